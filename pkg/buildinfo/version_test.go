package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); !strings.HasPrefix(got, "cratediff/"+Version+" ") {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if got := Template(); !strings.Contains(got, "version "+Version) || !strings.HasSuffix(got, "\n") {
		t.Errorf("Template() = %q", got)
	}
}
