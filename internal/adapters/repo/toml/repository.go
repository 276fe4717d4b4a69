package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	ProfilesPathKey = "profiles.path"

	profilesFileMode   = 0o600
	profilesDirMode    = 0o700
	profilesConfigDir  = ".config/rclctl"
	profilesConfigFile = "profiles.toml"
	tempFilePattern    = ".profiles-*.toml.tmp"
)

// Repository keeps named connection profiles in a single TOML file. Writes
// go through a temp file and a rename so readers never see a torn file.
type Repository struct {
	profilesPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ProfileRepository = (*Repository)(nil)

// NewRepository resolves the profiles file from cfg, falling back to
// ~/.config/rclctl/profiles.toml.
func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg.SetDefault(ProfilesPathKey, filepath.Join(homeDir, profilesConfigDir, profilesConfigFile))

	profilesPath := cfg.GetString(ProfilesPathKey)
	if profilesPath == "" {
		return nil, errors.New("profiles path is empty")
	}
	profilesPath, err = normalizeProfilesPath(expandHome(profilesPath, homeDir))
	if err != nil {
		return nil, err
	}

	return &Repository{profilesPath: profilesPath, mu: lockForPath(profilesPath)}, nil
}

func (r *Repository) Path() string {
	return r.profilesPath
}

// Save inserts or replaces the profile with the same name. The first profile
// ever saved becomes the active one.
func (r *Repository) Save(ctx context.Context, profile domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	profile.Name = strings.TrimSpace(profile.Name)
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(profile)
	if i := file.index(encoded.Name); i >= 0 {
		file.Profiles[i] = encoded
	} else {
		file.Profiles = append(file.Profiles, encoded)
	}
	if profile.Active || file.Active == "" {
		file.Active = encoded.Name
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) GetByName(ctx context.Context, name string) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Profile{}, err
	}

	i := file.index(strings.TrimSpace(name))
	if i < 0 {
		return domain.Profile{}, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	return fromSchema(file.Profiles[i], file.Active), nil
}

func (r *Repository) Active(ctx context.Context) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Profile{}, err
	}

	i := file.index(file.Active)
	if file.Active == "" || i < 0 {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return fromSchema(file.Profiles[i], file.Active), nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(file.Profiles))
	for _, entry := range file.Profiles {
		profiles = append(profiles, fromSchema(entry, file.Active))
	}

	return profiles, nil
}

func (r *Repository) SetActive(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if file.index(name) < 0 {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	file.Active = name

	return r.writeSchema(file)
}

// Delete removes the named profile. Deleting the active profile leaves no
// profile active.
func (r *Repository) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	i := file.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	file.Profiles = append(file.Profiles[:i], file.Profiles[i+1:]...)
	if file.Active == name {
		file.Active = ""
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.profilesPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read profiles file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode profiles file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.profilesPath), profilesDirMode); err != nil {
		return fmt.Errorf("create profiles directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode profiles file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.profilesPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp profiles file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp profiles file: %w", err)
	}
	if err := tempFile.Chmod(profilesFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp profiles file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp profiles file: %w", err)
	}
	if err := os.Rename(tempName, r.profilesPath); err != nil {
		return fmt.Errorf("replace profiles file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizeProfilesPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve profiles path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(profile domain.Profile) profileSchema {
	return profileSchema{
		Name:     profile.Name,
		BaseURL:  strings.TrimRight(strings.TrimSpace(profile.BaseURL), "/"),
		WSPath:   strings.TrimSpace(profile.WSPath),
		TokenRef: strings.TrimSpace(profile.TokenRef),
	}
}

func fromSchema(entry profileSchema, active string) domain.Profile {
	return domain.Profile{
		Name:     entry.Name,
		BaseURL:  entry.BaseURL,
		WSPath:   entry.WSPath,
		TokenRef: entry.TokenRef,
		Active:   entry.Name == active,
	}
}
