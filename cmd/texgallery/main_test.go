package main

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"texgallery/internal/api"
	"texgallery/internal/assets"
	"texgallery/internal/config"
	"texgallery/internal/session"
	"texgallery/internal/studio"
	"texgallery/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t, testsupport.WithTextureGroup(config.TextureGroup{
		Name:               "cars",
		Modifiable:         true,
		SupportsSaturation: true,
		Files:              []string{"cars/body.png", "cars/paint.jpg"},
	}))
	cfg.Logging.Level = "error"
	cfg.ModPack.Folders = []string{"mod/textures/files"}

	testsupport.WriteCatalog(t, cfg, assets.TypeJPG, "cars paint.jpg")
	testsupport.WriteCatalog(t, cfg, assets.TypePNG, "cars body.png", "ui logo.png")
	testsupport.WriteCatalog(t, cfg, assets.TypeAudio, "sfx horn.ogg")
	testsupport.WriteMedia(t, cfg, assets.TypeJPG, "paint.jpg", testsupport.JPEG(t, 4, 4, color.NRGBA{R: 10, G: 120, B: 200, A: 255}))
	testsupport.WriteMedia(t, cfg, assets.TypePNG, "body.png", testsupport.PNG(t, 4, 4, color.NRGBA{R: 200, G: 40, B: 40, A: 255}))
	testsupport.WriteMedia(t, cfg, assets.TypeAudio, "horn.ogg", []byte("OggS"))

	configPath := filepath.Join(homeDir, ".config", "texgallery", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, path, data)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Texture groups: 1")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "media_root")
	requireContains(t, out, "cars/body.png")
}

func TestListShowsCatalogOrder(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var views []studio.AssetView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	want := []string{"jpg/cars/paint.jpg", "png/cars/body.png", "png/ui/logo.png", "audio/sfx/horn.ogg"}
	if len(views) != len(want) {
		t.Fatalf("expected %d assets, got %d", len(want), len(views))
	}
	for i, id := range want {
		if views[i].ID != id {
			t.Fatalf("asset %d: expected %s, got %s", i, id, views[i].ID)
		}
	}

	out, _, err = runCLI(t, []string{"list", "--type", "png"}, env.configPath)
	if err != nil {
		t.Fatalf("list table: %v", err)
	}
	requireContains(t, out, "png/cars/body.png")
	requireContains(t, out, "2 assets")
	if strings.Contains(out, "paint.jpg") {
		t.Fatalf("type filter leaked jpg asset: %s", out)
	}
}

func TestEditPersistsSessionAcrossCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"edit", "saturation", "png/cars/body.png", "--percent", "0"}, env.configPath)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	requireContains(t, out, "saturation: 1 applied, 0 failed")

	sessionPath := filepath.Join(env.cfg.Paths.OutputDir, defaultSessionFile)
	if _, err := os.Stat(sessionPath); err != nil {
		t.Fatalf("expected session file: %v", err)
	}

	out, _, err = runCLI(t, []string{"list", "--state", "modified", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list modified: %v", err)
	}
	var views []studio.AssetView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(views) != 1 || views[0].ID != "png/cars/body.png" || !views[0].IsModified {
		t.Fatalf("unexpected modified listing: %+v", views)
	}

	out, _, err = runCLI(t, []string{"session", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("session show: %v", err)
	}
	requireContains(t, out, "cars/body.png")
	requireContains(t, out, "modified")

	out, _, err = runCLI(t, []string{"session", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("session clear: %v", err)
	}
	requireContains(t, out, "Removed")

	out, _, err = runCLI(t, []string{"list", "--state", "modified"}, env.configPath)
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	requireContains(t, out, "No assets match")
}

func TestEditExcludesAudioAndRejectsUnknownAsset(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"edit", "grey", "--all", "--query", "horn"}, env.configPath)
	if err == nil {
		t.Fatal("expected error when nothing could be applied")
	}
	requireContains(t, out, "1 audio excluded")

	if _, _, err := runCLI(t, []string{"edit", "grey", "png/none/missing.png"}, env.configPath); err == nil {
		t.Fatal("expected unknown asset to fail")
	}
	if _, _, err := runCLI(t, []string{"edit", "saturation"}, env.configPath); err == nil {
		t.Fatal("expected missing asset ids to fail")
	}
}

func TestExportWritesArchive(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"edit", "tint", "png/cars/body.png", "--color", "#00ff00"}, env.configPath); err != nil {
		t.Fatalf("edit: %v", err)
	}

	target := filepath.Join(env.baseDir, "out", "all.zip")
	out, _, err := runCLI(t, []string{"export", "--output", target, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var summary api.ArchiveSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Name != "all.zip" {
		t.Fatalf("unexpected name %q", summary.Name)
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0].Label != "png/ui/logo.png" {
		t.Fatalf("expected missing logo to be skipped, got %+v", summary.Skipped)
	}

	reader, err := zip.OpenReader(target)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()
	names := make(map[string]bool, len(reader.File))
	for _, f := range reader.File {
		names[f.Name] = true
	}
	for _, want := range []string{"jpg-assets/cars/paint.jpg", "png-assets/cars/body.png", "audio-assets/sfx/horn.ogg"} {
		if !names[want] {
			t.Fatalf("archive missing %s: %v", want, names)
		}
	}

	out, _, err = runCLI(t, []string{"export", "--modified"}, env.configPath)
	if err != nil {
		t.Fatalf("export modified: %v", err)
	}
	requireContains(t, out, "(1 files,")
	requireContains(t, out, env.cfg.Paths.OutputDir)
}

func TestModPackBuild(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"modpack", "groups"}, env.configPath)
	if err != nil {
		t.Fatalf("modpack groups: %v", err)
	}
	requireContains(t, out, "cars")

	target := filepath.Join(env.baseDir, "pack.zip")
	out, _, err = runCLI(t, []string{
		"modpack", "build", "cars",
		"--color", "body.png=#ff0000",
		"--saturation", "paint.jpg=40",
		"--output", target,
		"--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("modpack build: %v", err)
	}
	var summary api.ArchiveSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if len(summary.Paths) == 0 {
		t.Fatal("expected pack entries")
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected pack at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"modpack", "build", "cars", "--color", "body.png"}, env.configPath); err == nil {
		t.Fatal("expected malformed record flag to fail")
	}
	if _, _, err := runCLI(t, []string{"modpack", "build", "boats"}, env.configPath); err == nil {
		t.Fatal("expected unknown group to fail")
	}
}

func TestSessionLoadReportsWarnings(t *testing.T) {
	env := setupCLITestEnv(t)

	payload := base64.StdEncoding.EncodeToString(testsupport.PNG(t, 2, 2, color.NRGBA{B: 255, A: 255}))
	doc := session.Document{
		{Folder: "cars", Filename: "body.png", Type: "PNG", IsModified: true, ModifiedContentBase64: payload, MIMEType: "image/png"},
		{Folder: "boats", Filename: "hull.png", Type: "PNG", IsNew: true, NewContentBase64: payload, MIMEType: "image/png"},
	}
	var buf bytes.Buffer
	if err := session.Encode(&buf, doc); err != nil {
		t.Fatalf("encode doc: %v", err)
	}
	source := filepath.Join(env.baseDir, "import.json")
	testsupport.WriteFile(t, source, buf.Bytes())

	out, stderr, err := runCLI(t, []string{"session", "load", source}, env.configPath)
	if err != nil {
		t.Fatalf("session load: %v", err)
	}
	requireContains(t, out, "Applied 1 of 2 entries")
	requireContains(t, stderr, "warning: session entry 1")

	saved := filepath.Join(env.baseDir, "saved.json")
	out, _, err = runCLI(t, []string{"session", "save", saved}, env.configPath)
	if err != nil {
		t.Fatalf("session save: %v", err)
	}
	requireContains(t, out, "Saved 1 entries")
}

func TestStatusReportsChecksAndSession(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if report.Session == nil || report.Session.Assets != 4 {
		t.Fatalf("unexpected session status: %+v", report.Session)
	}
	if len(report.Checks) == 0 {
		t.Fatal("expected preflight checks")
	}

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status text: %v", err)
	}
	requireContains(t, out, "== Environment ==")
	requireContains(t, out, "Media root:")
	requireContains(t, out, "[OK] all lists loaded")
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Media.CacheEnabled = true
	writeTestConfig(t, env.configPath, env.cfg)

	if _, _, err := runCLI(t, []string{"export", "--output", filepath.Join(env.baseDir, "warm.zip")}, env.configPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries: 3")

	out, _, err = runCLI(t, []string{"cache", "prune", "--older-than", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	requireContains(t, out, "No cache entries pruned")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 3 entries")
}
