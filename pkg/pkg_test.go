package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}
}

func TestAuthor(t *testing.T) {
	t.Parallel()

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"config": ConfigDir(),
		"cache":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s dir %q does not end in %q", name, dir, Prefix())
		}
	}
}

func TestUserDir(t *testing.T) {
	t.Parallel()

	fail := func() (string, error) { return "", os.ErrNotExist }

	if got := userDir(func() (string, error) { return "/x", nil }, ".config"); got != "/x" {
		t.Errorf("userDir = %q, want /x", got)
	}

	if got := userDir(fail, ".config"); got == "" {
		t.Error("userDir fallback is empty")
	}
}
