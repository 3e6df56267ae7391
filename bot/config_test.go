package bot

import "testing"

func TestNormalizeStorageDefaults(t *testing.T) {
	sc := StorageConfig{}
	if err := normalizeStorage(&sc); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if sc.Driver != StorageFile {
		t.Fatalf("driver = %q, want file", sc.Driver)
	}
	if sc.Path == "" {
		t.Fatal("file driver should get a default path")
	}
}

func TestNormalizeStorageRejectsUnknownDriver(t *testing.T) {
	sc := StorageConfig{Driver: "redis"}
	if err := normalizeStorage(&sc); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNormalizeStoragePostgres(t *testing.T) {
	sc := StorageConfig{Driver: " Postgres "}
	if err := normalizeStorage(&sc); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if sc.Driver != StoragePostgres {
		t.Fatalf("driver = %q, want postgres", sc.Driver)
	}
	if sc.Path != "" {
		t.Fatal("postgres driver should not get a file path")
	}
}
