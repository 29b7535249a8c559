package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/infra/confloader"
)

// Store reads and writes the single credential record of a configuration
// directory. It is not safe against concurrent CLI processes; the last
// writer wins.
type Store struct {
	dir       string
	envPrefix string
}

// NewStore creates a store rooted at dir. An empty dir selects DefaultDir().
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{
		dir:       dir,
		envPrefix: confloader.DefaultEnvPrefix,
	}
}

// Path returns the credential record file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Exists reports whether a record file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Load reads the on-disk record merged over the defaults. A missing or
// empty file yields the defaults. The directory is created if needed.
func (s *Store) Load() (*domain.CredentialRecord, error) {
	return s.load("")
}

// LoadEffective is Load plus the METACALL_DEPLOY_* environment layer.
// The environment layer is never written back by Save.
func (s *Store) LoadEffective() (*domain.CredentialRecord, error) {
	return s.load(s.envPrefix)
}

func (s *Store) load(envPrefix string) (*domain.CredentialRecord, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	loader := confloader.NewLoader(
		confloader.WithDefaults(defaultValues()),
		confloader.WithConfigFile(s.Path()),
		confloader.WithEnvPrefix(envPrefix),
		confloader.WithKnownKeys(recordKeys...),
	)

	var record domain.CredentialRecord
	if err := loader.Load(&record); err != nil {
		return nil, domain.ErrStorage.WithDetails(s.Path()).WithCause(err)
	}
	return &record, nil
}

// Save merges patch into the current on-disk record and rewrites the file.
// Fields equal to their default are dropped to keep the file minimal, and
// keys the store does not recognize are preserved. The write replaces the
// file wholesale via rename.
func (s *Store) Save(patch domain.RecordPatch) error {
	current, err := s.Load()
	if err != nil {
		return err
	}

	raw, err := s.readRaw()
	if err != nil {
		return err
	}

	merged := recordValues(patch.Apply(*current))
	defaults := recordValues(domain.DefaultCredentialRecord())
	for _, key := range recordKeys {
		if merged[key] == defaults[key] {
			delete(raw, key)
			continue
		}
		raw[key] = merged[key]
	}

	content, err := godotenv.Marshal(raw)
	if err != nil {
		return domain.ErrStorage.WithDetails("encode record").WithCause(err)
	}
	if content != "" {
		content += "\n"
	}

	return s.writeAtomic([]byte(content))
}

// Delete removes the record. It fails with ErrNotLoggedIn when there is
// nothing to remove.
func (s *Store) Delete() error {
	err := os.Remove(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrNotLoggedIn.WithDetails("no credential record at " + s.Path())
	}
	if err != nil {
		return domain.ErrStorage.WithDetails(s.Path()).WithCause(err)
	}
	return nil
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return domain.ErrStorage.WithDetails("create " + s.dir).WithCause(err)
	}
	return nil
}

// readRaw returns the file as written, without defaults.
func (s *Store) readRaw() (map[string]string, error) {
	raw, err := godotenv.Read(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, domain.ErrStorage.WithDetails(s.Path()).WithCause(err)
	}
	return raw, nil
}

func (s *Store) writeAtomic(data []byte) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+FileName+"-*")
	if err != nil {
		return domain.ErrStorage.WithDetails("create temp file").WithCause(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domain.ErrStorage.WithDetails("write record").WithCause(err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return domain.ErrStorage.WithDetails("chmod record").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return domain.ErrStorage.WithDetails("close record").WithCause(err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		return domain.ErrStorage.WithDetails(fmt.Sprintf("replace %s", s.Path())).WithCause(err)
	}
	return nil
}
