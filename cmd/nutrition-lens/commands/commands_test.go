package commands

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/nutrition-lens/internal/app"
)

const labelText = "Protein 5g Sugar 3.2g Sodium 100mg\nIngredients: Milk, Sugar, Salt."

// writeConfig writes a config using the static OCR engine and a temp history file.
func writeConfig(t *testing.T) string {
	t.Helper()
	t.Setenv(app.EnvGoogleAPIKey, "")
	t.Setenv(app.EnvOCREngine, "")
	t.Setenv(app.EnvHistoryDB, "")

	dir := t.TempDir()
	cfg := map[string]interface{}{
		"ocr":       map[string]string{"engine": "static", "staticText": labelText},
		"historyDb": filepath.Join(dir, "history.db"),
	}
	data, _ := json.Marshal(cfg)
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func writeImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(t.TempDir(), "label.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCapture(t, stdin, args...)
	return out, err
}

// runCapture is run that also returns what the command wrote to stderr.
func runCapture(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(BuildInfo{Version: "1.2.3", BuildTime: "now", GitCommit: "abc"})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

type scanJSON struct {
	ID        string   `json:"id"`
	Allergens []string `json:"allergens"`
	Narration string   `json:"narration"`
	Rating    struct {
		Verdict string `json:"verdict"`
	} `json:"rating"`
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "nutrition-lens 1.2.3") || !strings.Contains(out, "Git commit: abc") {
		t.Errorf("output: %q", out)
	}
}

func TestParse_Stdin(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "Sugar 30g Fat 25g", "--config", cfg, "parse")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var got scanJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Rating.Verdict != "Avoid" {
		t.Errorf("verdict: got %s, want Avoid", got.Rating.Verdict)
	}
}

func TestParse_FileMarkdown(t *testing.T) {
	cfg := writeConfig(t)
	textPath := filepath.Join(t.TempDir(), "label.txt")
	os.WriteFile(textPath, []byte(labelText), 0o644)

	out, err := run(t, "", "--config", cfg, "parse", "--format", "markdown", textPath)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(out, "| Protein | 5 g |") || !strings.Contains(out, "- Milk") {
		t.Errorf("markdown: %s", out)
	}
}

func TestScan(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "", "--config", cfg, "scan", writeImage(t))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	var got scanJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Rating.Verdict != "Healthy" || len(got.Allergens) != 1 || got.ID != "" {
		t.Errorf("result: %+v", got)
	}
}

func TestScan_Errors(t *testing.T) {
	cfg := writeConfig(t)
	img := writeImage(t)
	notImage := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(notImage, []byte("hello"), 0o644)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"--config", cfg, "scan", "--format", "pdf", img}},
		{"bad region", []string{"--config", cfg, "scan", "--region", "1,2", img}},
		{"region outside image", []string{"--config", cfg, "scan", "--region", "0,0,500,500", img}},
		{"not an image", []string{"--config", cfg, "scan", notImage}},
		{"missing argument", []string{"--config", cfg, "scan"}},
		{"unknown engine", []string{"--config", cfg, "--ocr-engine", "abacus", "scan", img}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "", tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestScan_NarrateWithoutSpeech(t *testing.T) {
	cfg := writeConfig(t)
	audio := filepath.Join(t.TempDir(), "out.mp3")

	out, err := run(t, "", "--config", cfg, "scan", "--narrate", "--audio-out", audio, writeImage(t))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	var got scanJSON
	json.Unmarshal([]byte(out), &got)
	if !strings.HasPrefix(got.Narration, "Here are the nutrition facts: Protein: 5 g") {
		t.Errorf("narration: %q", got.Narration)
	}
	if _, err := os.Stat(audio); !os.IsNotExist(err) {
		t.Error("no audio file expected without speech synthesis")
	}
}

func TestNarrate_DefaultAudioName(t *testing.T) {
	cfg := writeConfig(t)
	_, stderr, err := runCapture(t, "", "--config", cfg, "narrate", writeImage(t))
	if err != nil {
		t.Fatalf("narrate failed: %v", err)
	}
	if !strings.Contains(stderr, "speech synthesis is not configured") || !strings.Contains(stderr, "nutrition.mp3") {
		t.Errorf("stderr: %q", stderr)
	}
}

func TestNarrate(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "", "--config", cfg, "narrate", writeImage(t))
	if err != nil {
		t.Fatalf("narrate failed: %v", err)
	}
	want := "Here are the nutrition facts: Protein: 5 g, Sugar: 3.2 g, Sodium: 100 mg\n"
	if out != want {
		t.Errorf("output: got %q, want %q", out, want)
	}
}

func TestHistory(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "", "--config", cfg, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "no saved scans") {
		t.Errorf("empty history: %q", out)
	}

	out, err = run(t, "", "--config", cfg, "scan", "--save", writeImage(t))
	if err != nil {
		t.Fatalf("scan --save failed: %v", err)
	}
	var saved scanJSON
	json.Unmarshal([]byte(out), &saved)
	if saved.ID == "" {
		t.Fatal("saved scan has no id")
	}

	out, err = run(t, "", "--config", cfg, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, saved.ID) || !strings.Contains(out, "label.png") || !strings.Contains(out, "Milk") {
		t.Errorf("listing: %q", out)
	}

	out, err = run(t, "", "--config", cfg, "history", "--show", saved.ID)
	if err != nil || !strings.Contains(out, `"verdict": "Healthy"`) {
		t.Errorf("show: %q, %v", out, err)
	}

	if _, err := run(t, "", "--config", cfg, "history", "--delete", saved.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := run(t, "", "--config", cfg, "history", "--show", saved.ID); err == nil {
		t.Error("show after delete should fail")
	}
}

func TestHistory_Disabled(t *testing.T) {
	cfg := writeConfig(t)
	if _, err := run(t, "", "--config", cfg, "--history-db", "off", "history"); err == nil {
		t.Error("history should fail when disabled")
	}
}

func TestMCP(t *testing.T) {
	cfg := writeConfig(t)
	stdin := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n"

	out, err := run(t, stdin, "--config", cfg, "mcp")
	if err != nil {
		t.Fatalf("mcp failed: %v", err)
	}
	if !strings.Contains(out, `"nutrition-lens"`) || !strings.Contains(out, `"1.2.3"`) {
		t.Errorf("initialize response: %q", out)
	}
}

func TestScan_SaveTwice(t *testing.T) {
	cfg := writeConfig(t)
	image := writeImage(t)

	out, stderr, err := runCapture(t, "", "--config", cfg, "scan", "--save", image)
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	var first scanJSON
	json.Unmarshal([]byte(out), &first)
	if first.ID == "" || strings.Contains(stderr, "already saved") {
		t.Fatalf("first save: id %q, stderr %q", first.ID, stderr)
	}

	out, stderr, err = runCapture(t, "", "--config", cfg, "scan", "--save", image)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	var second scanJSON
	json.Unmarshal([]byte(out), &second)
	if second.ID != first.ID {
		t.Errorf("second save id %q, want %q", second.ID, first.ID)
	}
	if !strings.Contains(stderr, "already saved as "+first.ID) {
		t.Errorf("stderr: %q", stderr)
	}

	out, err = run(t, "", "--config", cfg, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if n := strings.Count(out, first.ID); n != 1 {
		t.Errorf("history lists the scan %d times:\n%s", n, out)
	}
}

func TestScan_NoHistoryFileWithoutSave(t *testing.T) {
	cfg := writeConfig(t)
	if _, err := run(t, "", "--config", cfg, "scan", writeImage(t)); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	db := filepath.Join(filepath.Dir(cfg), "history.db")
	if _, err := os.Stat(db); !os.IsNotExist(err) {
		t.Errorf("history database created by a scan without --save: %v", err)
	}
}
