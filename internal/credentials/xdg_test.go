package credentials

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettingsPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("Failed to get home directory: %v", err)
	}

	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		testPath := "/tmp/test-config"
		t.Setenv("XDG_CONFIG_HOME", testPath)

		result := DefaultSettingsPath()
		expected := filepath.Join(testPath, "weasel", "settings.json")

		if result != expected {
			t.Errorf("Expected %s, got %s", expected, result)
		}
	})

	t.Run("without XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")

		result := DefaultSettingsPath()
		expected := filepath.Join(homeDir, ".config", "weasel", "settings.json")

		if result != expected {
			t.Errorf("Expected %s, got %s", expected, result)
		}
	})
}

func TestResolveSettingsPath(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		if got := ResolveSettingsPath("/etc/weasel.json"); got != "/etc/weasel.json" {
			t.Errorf("Expected explicit path, got %s", got)
		}
	})

	t.Run("existing XDG file", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		path := filepath.Join(tmpDir, "weasel", "settings.json")
		if err := EnsureParentDir(path); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}

		if got := ResolveSettingsPath(""); got != path {
			t.Errorf("Expected %s, got %s", path, got)
		}
	})

	t.Run("nothing exists falls back to XDG path", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		chdir(t, t.TempDir())

		expected := filepath.Join(tmpDir, "weasel", "settings.json")
		if got := ResolveSettingsPath(""); got != expected {
			t.Errorf("Expected %s, got %s", expected, got)
		}
	})

	t.Run("legacy file in working directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		wd := t.TempDir()
		chdir(t, wd)
		if err := os.WriteFile(filepath.Join(wd, "settings.json"), []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}

		if got := ResolveSettingsPath(""); got != LegacySettingsPath() {
			t.Errorf("Expected %s, got %s", LegacySettingsPath(), got)
		}
	})
}

func TestEnsureParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "nested", "dir", "settings.json")

	err := EnsureParentDir(testPath)
	if err != nil {
		t.Fatalf("EnsureParentDir failed: %v", err)
	}

	parentDir := filepath.Dir(testPath)
	info, err := os.Stat(parentDir)
	if err != nil {
		t.Fatalf("Parent directory was not created: %v", err)
	}

	if !info.IsDir() {
		t.Error("Expected parent to be a directory")
	}

	expectedPerm := os.FileMode(0700)
	if info.Mode().Perm() != expectedPerm {
		t.Errorf("Expected permissions %v, got %v", expectedPerm, info.Mode().Perm())
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("file exists", func(t *testing.T) {
		existingFile := filepath.Join(tmpDir, "exists.json")
		if err := os.WriteFile(existingFile, []byte("{}"), 0600); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		if !FileExists(existingFile) {
			t.Error("Expected FileExists to return true for existing file")
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		nonExistentFile := filepath.Join(tmpDir, "does-not-exist.json")

		if FileExists(nonExistentFile) {
			t.Error("Expected FileExists to return false for non-existent file")
		}
	})
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
