package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/arbor/internal/api"
	"github.com/ShayCichocki/arbor/internal/config"
	"github.com/ShayCichocki/arbor/internal/state"
	"github.com/ShayCichocki/arbor/internal/storage"
	"github.com/ShayCichocki/arbor/pkg/models"
)

// workspace is the resolved project root plus everything hung off it.
type workspace struct {
	root  string
	cfg   *config.Config
	store *storage.Manager
}

// loadWorkspace resolves the project root (the directory holding
// .arbor.yaml, or the working directory) and loads configuration.
func loadWorkspace() (*workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	if projectCfg := config.GetProjectConfigPath(); projectCfg != "" {
		root = filepath.Dir(projectCfg)
	}
	return newWorkspace(root, cfg), nil
}

func newWorkspace(root string, cfg *config.Config) *workspace {
	ws := &workspace{root: root, cfg: cfg}
	ws.store = storage.NewManager(ws.path(cfg.Storage.Dir))
	return ws
}

// path resolves a configured path against the project root. Empty stays empty.
func (ws *workspace) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ws.root, p)
}

func (ws *workspace) arborDir() string {
	return filepath.Join(ws.root, ".arbor")
}

// openLedger opens and migrates the run ledger.
func (ws *workspace) openLedger() (*state.DB, error) {
	db, err := state.Open(ws.path(ws.cfg.State.DBPath), ws.cfg.State.Driver)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return db, nil
}

// loadRoadmap accepts either a path to a roadmap JSON file or a project
// name stored under the storage directory. It returns the path the
// roadmap will be saved to. An explicit file must carry the name Save
// would give it, so later saves overwrite that same file.
func (ws *workspace) loadRoadmap(arg string) (*models.Roadmap, string, error) {
	if strings.HasSuffix(arg, ".json") {
		if _, err := os.Stat(arg); err == nil {
			store := storage.NewManager(filepath.Dir(arg))
			rm, err := store.Load(arg)
			if err != nil {
				return nil, "", err
			}
			want := store.PathFor(rm)
			if filepath.Base(want) != filepath.Base(arg) {
				return nil, "", fmt.Errorf("roadmap %s must be named %s so saves replace it", arg, filepath.Base(want))
			}
			ws.store = store
			return rm, want, nil
		}
	}
	if !ws.store.Exists(arg) {
		return nil, "", fmt.Errorf("no saved roadmap for %q in %s (run 'arbor status' to list roadmaps)", arg, ws.store.Dir())
	}
	rm, err := ws.store.LoadProject(arg)
	return rm, ws.store.RoadmapPath(arg), err
}

// newModelClient builds the structured-output client for cfg.Provider.
func newModelClient(cfg *config.Config) (*api.Client, error) {
	cc := api.ClientConfig{
		Model:     anthropic.Model(cfg.Model()),
		MaxTokens: cfg.Generation.MaxTokens,
	}
	switch cfg.Provider {
	case api.ProviderBedrock:
		cc.UseAWSBedrock = true
		cc.AWSRegion = cfg.Bedrock.Region
		cc.AWSProfile = cfg.Bedrock.Profile
	default:
		key, _, err := config.ResolveAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		cc.APIKey = key
		cc.BaseURL = cfg.Anthropic.BaseURL
	}
	return api.NewClient(cc)
}

// buildRegistry registers the configured provider's client. The concrete
// client is returned too so its token tracker can be read after a run.
func buildRegistry(cfg *config.Config) (*api.Registry, *api.Client, error) {
	client, err := newModelClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}
	reg := api.NewRegistry()
	if err := reg.Register(cfg.Provider, client); err != nil {
		return nil, nil, err
	}
	return reg, client, nil
}
