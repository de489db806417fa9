package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// Repository indexes compiled artifacts from a Foundry (out/) or Hardhat
// (artifacts/) build directory
type Repository struct {
	projectRoot     string
	artifactsDir    string
	compilerVersion string
	log             *slog.Logger

	mu      sync.RWMutex
	indexed bool
	byName  map[string][]*models.Artifact // contract name -> artifacts
	byFQN   map[string]*models.Artifact   // "path/File.sol:Name" -> artifact
	warned  map[string]bool
}

// NewRepository creates a new artifact repository
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	return &Repository{
		projectRoot:     cfg.ProjectRoot,
		artifactsDir:    filepath.Join(cfg.ProjectRoot, cfg.Project.Compiler.Artifacts),
		compilerVersion: cfg.Project.Compiler.Version,
		log:             log.With("component", "artifacts"),
	}
}

// Index discovers all artifacts
func (r *Repository) Index() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed {
		return nil
	}

	r.byName = make(map[string][]*models.Artifact)
	r.byFQN = make(map[string]*models.Artifact)
	r.warned = make(map[string]bool)

	if _, err := os.Stat(r.artifactsDir); os.IsNotExist(err) {
		return fmt.Errorf("%w: build directory %s does not exist (run the compiler first)", domain.ErrArtifactNotFound, r.artifactsDir)
	}

	err := filepath.WalkDir(r.artifactsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}
		return r.processArtifact(path)
	})
	if err != nil {
		return fmt.Errorf("failed to index artifacts: %w", err)
	}

	r.indexed = true
	return nil
}

// processArtifact parses a single artifact file and adds it to the indexes
func (r *Repository) processArtifact(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		r.log.Debug("skipping unreadable artifact", "path", path, "error", err)
		return nil
	}
	if len(artifact.ABI) == 0 {
		return nil
	}

	artifact.Path = path
	artifact.Name, artifact.SourcePath = artifactIdentity(&artifact, path)
	if artifact.Name == "" {
		return nil
	}

	fqn := artifact.SourcePath + ":" + artifact.Name
	if existing, ok := r.byFQN[fqn]; ok {
		// Foundry keeps one file per compiler version; the shortest path is the default one
		if len(existing.Path) <= len(path) {
			return nil
		}
		r.removeByName(existing)
	}

	r.byFQN[fqn] = &artifact
	r.byName[artifact.Name] = append(r.byName[artifact.Name], &artifact)
	return nil
}

func (r *Repository) removeByName(artifact *models.Artifact) {
	list := r.byName[artifact.Name]
	for i, a := range list {
		if a == artifact {
			r.byName[artifact.Name] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// artifactIdentity returns the contract name and source path of an artifact
func artifactIdentity(artifact *models.Artifact, path string) (string, string) {
	// Hardhat
	if artifact.ContractName != "" && artifact.SourceName != "" {
		return artifact.ContractName, artifact.SourceName
	}

	// Foundry
	if artifact.Metadata != nil {
		for source, name := range artifact.Metadata.Settings.CompilationTarget {
			return name, source
		}
	}

	// Foundry without metadata: out/<File>.sol/<Name>[.<version>].json
	name, _, _ := strings.Cut(strings.TrimSuffix(filepath.Base(path), ".json"), ".")
	return name, filepath.Base(filepath.Dir(path))
}

// GetArtifact finds an artifact by contract name or "path/File.sol:Name"
func (r *Repository) GetArtifact(ctx context.Context, name string) (*models.Artifact, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}

	// build info and warnings are filled in lazily
	r.mu.Lock()
	defer r.mu.Unlock()

	var artifact *models.Artifact
	if strings.Contains(name, ":") {
		a, ok := r.byFQN[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
		}
		artifact = a
	} else {
		matches := r.byName[name]
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: %s (searched %s)", domain.ErrArtifactNotFound, name, r.relative(r.artifactsDir))
		case 1:
			artifact = matches[0]
		default:
			fqns := make([]string, len(matches))
			for i, m := range matches {
				fqns[i] = m.SourcePath + ":" + m.Name
			}
			sort.Strings(fqns)
			return nil, domain.AmbiguousArtifactErr{Name: name, Matches: fqns}
		}
	}

	if artifact.Bytecode.HasPlaceholders() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnlinkedLibraries, name)
	}

	if artifact.Metadata == nil && artifact.StandardInput == nil {
		r.loadBuildInfo(artifact)
	}
	r.checkCompilerVersion(artifact)

	clone := *artifact
	return &clone, nil
}

// loadBuildInfo attaches the solc standard-json input of a Hardhat artifact,
// which Hardhat keeps in build-info referenced from <Name>.dbg.json
func (r *Repository) loadBuildInfo(artifact *models.Artifact) {
	dbgPath := strings.TrimSuffix(artifact.Path, ".json") + ".dbg.json"
	data, err := os.ReadFile(dbgPath)
	if err != nil {
		return
	}

	var dbg struct {
		BuildInfo string `json:"buildInfo"`
	}
	if err := json.Unmarshal(data, &dbg); err != nil || dbg.BuildInfo == "" {
		return
	}

	data, err = os.ReadFile(filepath.Join(filepath.Dir(dbgPath), dbg.BuildInfo))
	if err != nil {
		r.log.Debug("build info not readable", "artifact", artifact.Name, "error", err)
		return
	}

	var buildInfo struct {
		SolcLongVersion string          `json:"solcLongVersion"`
		Input           json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal(data, &buildInfo); err != nil {
		return
	}
	artifact.StandardInput = buildInfo.Input
	artifact.SolcLongVersion = buildInfo.SolcLongVersion
}

func (r *Repository) checkCompilerVersion(artifact *models.Artifact) {
	version := artifact.CompilerVersion()
	if version == "" || r.compilerVersion == "" || version == r.compilerVersion || r.warned[artifact.Path] {
		return
	}
	r.warned[artifact.Path] = true
	r.log.Warn("artifact compiled with a different solc version",
		"contract", artifact.Name, "artifact", version, "configured", r.compilerVersion)
}

func (r *Repository) relative(path string) string {
	if rel, err := filepath.Rel(r.projectRoot, path); err == nil {
		return rel
	}
	return path
}

var _ usecase.ArtifactRepository = (*Repository)(nil)
