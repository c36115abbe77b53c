package resolve

import (
	"errors"
	"testing"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		key  string
		want string
	}{
		{name: "simple", doc: `{"version":"7.4"}`, key: "version", want: "7.4"},
		{name: "whitespace", doc: "{ \"version\" \n:\t \"7.4\" }", key: "version", want: "7.4"},
		{name: "second key", doc: `{"version":"7.4","downloadUrl":"http://example/gradle-7.4.zip"}`, key: "downloadUrl", want: "http://example/gradle-7.4.zip"},
		{name: "escaped slash", doc: `{"downloadUrl":"https:\/\/services.gradle.org\/distributions\/gradle-8.5-bin.zip"}`, key: "downloadUrl", want: "https://services.gradle.org/distributions/gradle-8.5-bin.zip"},
		{name: "all escapes", doc: `{"k":"a\\b\"c\'d\/e\nf\tg"}`, key: "k", want: "a\\b\"c'd/e\nf\tg"},
		{name: "empty value", doc: `{"k":""}`, key: "k", want: ""},
		{name: "key appears as value first", doc: `{"name":"version","version":"8.0"}`, key: "version", want: "8.0"},
		{name: "key with quote", doc: `{"a\"b":"x"}`, key: `a"b`, want: "x"},
		{name: "unicode passthrough", doc: `{"k":"grüße"}`, key: "k", want: "grüße"},
		{name: "real document", doc: `{
  "version" : "8.5",
  "buildTime" : "20231129140857+0000",
  "current" : true,
  "snapshot" : false,
  "nightly" : false,
  "releaseNightly" : false,
  "activeRc" : false,
  "rcFor" : "",
  "milestoneFor" : "",
  "broken" : false,
  "downloadUrl" : "https://services.gradle.org/distributions/gradle-8.5-bin.zip",
  "checksumUrl" : "https://services.gradle.org/distributions/gradle-8.5-bin.zip.sha256",
  "wrapperChecksumUrl" : "https://services.gradle.org/distributions/gradle-8.5-wrapper.jar.sha256"
}`, key: "downloadUrl", want: "https://services.gradle.org/distributions/gradle-8.5-bin.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.doc, tt.key)
			if err != nil {
				t.Fatalf("Value error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValueErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		key  string
		kind ParseErrorKind
	}{
		{name: "missing key", doc: `{"other":"x"}`, key: "version", kind: KeyNotFound},
		{name: "key without colon", doc: `{"version"}`, key: "version", kind: KeyNotFound},
		{name: "empty document", doc: ``, key: "version", kind: KeyNotFound},
		{name: "end after colon", doc: `{"version":   `, key: "version", kind: Truncated},
		{name: "unterminated", doc: `{"version":"7.4`, key: "version", kind: Truncated},
		{name: "dangling escape", doc: `{"version":"7.4\`, key: "version", kind: Truncated},
		{name: "number", doc: `{"version":7.4}`, key: "version", kind: NotString},
		{name: "object", doc: `{"version":{"a":"b"}}`, key: "version", kind: NotString},
		{name: "array", doc: `{"version":["7.4"]}`, key: "version", kind: NotString},
		{name: "unicode escape", doc: `{"version":"\u0037"}`, key: "version", kind: UnknownEscape},
		{name: "carriage return escape", doc: `{"version":"a\rb"}`, key: "version", kind: UnknownEscape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Value(tt.doc, tt.key)
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if pe.Kind != tt.kind {
				t.Fatalf("expected kind %d, got %d (%v)", tt.kind, pe.Kind, err)
			}
			if pe.Key != tt.key {
				t.Fatalf("expected key %q, got %q", tt.key, pe.Key)
			}
		})
	}
}
