package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "hook error",
			code:    CodeHookOutsideRender,
			wantMsg: "Hook called outside a component render",
			wantCat: CategoryComponent,
		},
		{
			name:    "context error",
			code:    CodeUnknownContext,
			wantMsg: "Context not registered",
			wantCat: CategoryComponent,
		},
		{
			name:    "bridge error",
			code:    CodeBridgeLoadFailed,
			wantMsg: "Accelerated backend unavailable",
			wantCat: CategoryBridge,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestEghactError_Error(t *testing.T) {
	err := New(CodeUnknownContext).WithSubject("theme")
	want := "E020: Context not registered (theme)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &EghactError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}

	wrapped := New(CodeBridgeLoadFailed).Wrap(stderrors.New("no such file"))
	if !strings.HasSuffix(wrapped.Error(), ": no such file") {
		t.Errorf("Error() = %q, want wrapped cause suffix", wrapped.Error())
	}
}

func TestEghactError_IsAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := New(CodeBridgeCallFailed).Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !stderrors.Is(err, New(CodeBridgeCallFailed)) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New(CodeBridgeLoadFailed)) {
		t.Error("errors.Is should not match a different code")
	}

	var ee *EghactError
	if !stderrors.As(err, &ee) || ee.Code != CodeBridgeCallFailed {
		t.Error("errors.As should extract the EghactError")
	}
}

func TestHasCode(t *testing.T) {
	inner := New(CodeProtocolDecode)
	outer := New(CodeBridgeCallFailed).Wrap(inner)

	if !HasCode(outer, CodeProtocolDecode) {
		t.Error("HasCode should walk the wrap chain")
	}
	if HasCode(stderrors.New("x"), CodeProtocolDecode) {
		t.Error("HasCode on a plain error should be false")
	}
	if HasCode(nil, CodeProtocolDecode) {
		t.Error("HasCode(nil) should be false")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeConfigInvalid) != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	ee := New(CodeConfigInvalid)
	if FromError(ee, CodeTreeFileInvalid) != ee {
		t.Error("FromError should return EghactError as-is")
	}

	std := stderrors.New("bad yaml")
	result := FromError(std, CodeConfigInvalid)
	if result.Wrapped != std {
		t.Error("standard error should be wrapped")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeUnknownContext).
		WithSubject("theme").
		WithSuggestion("Call CreateContext first")

	out := err.Format()
	for _, want := range []string{"ERROR E020: Context not registered", "theme", "Hint: Call CreateContext first", "Learn more:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("Format() should not contain escape sequences when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeDoubleMount).WithSubject("Counter#3")
	want := "E010: Component already mounted [Counter#3]"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprintPlainError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRegistryCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("registry should not be empty")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.DocURL == "" {
			t.Errorf("code %s has incomplete template", code)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six seven" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}
