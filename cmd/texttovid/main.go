/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/config"
	"github.com/JaYani55/TextToSimpleVid/internal/crash"
	"github.com/JaYani55/TextToSimpleVid/internal/export"
	applog "github.com/JaYani55/TextToSimpleVid/internal/log"
	"github.com/JaYani55/TextToSimpleVid/internal/media"
	"github.com/JaYani55/TextToSimpleVid/internal/pipeline"
	"github.com/JaYani55/TextToSimpleVid/internal/render"
	"github.com/JaYani55/TextToSimpleVid/internal/stylepack"
	"github.com/JaYani55/TextToSimpleVid/internal/styles"
	"github.com/JaYani55/TextToSimpleVid/internal/tts"
	"github.com/JaYani55/TextToSimpleVid/internal/version"
)

func usage() {
	fmt.Println("TextToSimpleVid - compile annotated scripts into timed video compositions")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  texttovid version|-v|--version             Show version")
	fmt.Println("  texttovid compile [flags] <document>       Compile a document and export its plan")
	fmt.Println("  texttovid render [flags] <plan.json>       Render a compiled plan with ffmpeg")
	fmt.Println("  texttovid probe <file> [<file> ...]        Print media durations via ffprobe")
	fmt.Println("  texttovid styles [list [dir]]              List the known text overlay styles")
	fmt.Println("  texttovid styles pack <dest.zip>           Zip the workspace styles and fonts")
	fmt.Println("  texttovid styles install <pack.zip>        Install a style pack into the workspace")
	fmt.Println("  texttovid serve-help                       Describe the ttvserver compile service")
	fmt.Println()
	fmt.Println("Run 'texttovid <command> -h' for the command's flags.")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var doc string
	defer func() { crash.Recover(doc) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
	case "compile":
		runCompile(l, args[2:], &doc)
	case "render":
		runRender(l, args[2:], &doc)
	case "probe":
		runProbe(l, args[2:])
	case "styles":
		runStyles(l, args[2:])
	case "serve-help":
		serveHelp()
	default:
		usage()
		os.Exit(2)
	}
}

// runCompile turns one annotated document into a composition plan and writes
// the export artifacts next to the document. doc receives the document path
// as soon as it is known so a crash report can name it.
func runCompile(l *slog.Logger, args []string, doc *string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	preset := fs.String("preset", "web", "export preset: web (json+srt) or studio (json+srt+pdf)")
	formats := fs.String("formats", "", "comma-separated artifacts to write (json,srt,pdf), overrides the preset")
	outDir := fs.String("out", "", "export directory; relative paths land under <docdir>/exports")
	engine := fs.String("tts", "", "speech engine: estimate or elevenlabs (default from config)")
	voice := fs.String("voice", "", "voice id (default from config)")
	speed := fs.Float64("speed", 0, "speech speed ratio (default from config)")
	narrOut := fs.String("narration-out", "", "narration audio destination (default <docdir>/narration.mp3)")
	skipNarration := fs.Bool("skip-narration", false, "compile without synthesizing narration")
	validateMedia := fs.Bool("validate-media", false, "fail when a referenced media file cannot be found")
	transition := fs.Float64("transition", 0, "crossfade window in seconds (default from config)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Println("compile requires <document>")
		fs.Usage()
		os.Exit(2)
	}

	abs, _ := filepath.Abs(fs.Arg(0))
	*doc = abs
	data, err := os.ReadFile(abs)
	if err != nil {
		l.Error("read document failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	workspace := filepath.Dir(abs)

	cfg, _, err := config.Load()
	if err != nil {
		l.Error("load config failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if *engine != "" {
		cfg.TTS.Engine = *engine
	}
	if *voice != "" {
		cfg.TTS.Voice = *voice
	}
	if *speed > 0 {
		cfg.TTS.Speed = *speed
	}
	if *transition > 0 {
		cfg.Render.TransitionSeconds = *transition
	}
	narrationOut := *narrOut
	if narrationOut == "" && cfg.TTS.Engine == tts.EngineElevenLabs {
		narrationOut = filepath.Join(workspace, "narration.mp3")
	}

	comp, closeCache, err := newCompiler(cfg, workspace, pipeline.Options{
		Voice:             cfg.TTS.Voice,
		Speed:             cfg.TTS.Speed,
		NarrationOut:      narrationOut,
		TransitionSeconds: cfg.Render.TransitionSeconds,
		SkipNarration:     *skipNarration,
		ValidateMedia:     *validateMedia,
	})
	if err != nil {
		l.Error("compiler setup failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer closeCache()

	l.Info("compile document", slog.String("doc", abs), slog.String("engine", cfg.TTS.Engine))
	res, err := comp.Compile(context.Background(), string(data))
	if err != nil {
		l.Error("compile failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	written, err := export.Batch(res.Plan, workspace, export.BatchOptions{
		Preset:  export.PresetName(*preset),
		Formats: splitList(*formats),
		OutDir:  *outDir,
	})
	if err != nil {
		l.Error("export failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	fmt.Printf("Compiled plan %s: %.2fs, %d tracks\n", res.Plan.ID, res.Plan.TotalDuration, len(res.Plan.Tracks))
	if res.Narration != nil {
		if res.Narration.AudioPath != "" {
			fmt.Printf("Narration: %.2fs (%s)\n", res.Narration.Duration, res.Narration.AudioPath)
		} else {
			fmt.Printf("Narration: %.2fs (estimated)\n", res.Narration.Duration)
		}
	}
	for _, w := range written {
		fmt.Println("Wrote", w)
	}
}

// runRender reads an exported plan and drives ffmpeg over it. Relative media,
// styles and fonts paths resolve against the working directory, so render
// from the directory the document was compiled in.
func runRender(l *slog.Logger, args []string, doc *string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "output_video.mp4", "output video file")
	dryRun := fs.Bool("dry-run", false, "print the ffmpeg arguments instead of running ffmpeg")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Println("render requires <plan.json>")
		fs.Usage()
		os.Exit(2)
	}

	abs, _ := filepath.Abs(fs.Arg(0))
	*doc = abs
	plan, err := export.ReadPlan(abs)
	if err != nil {
		l.Error("read plan failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	cfg, _, err := config.Load()
	if err != nil {
		l.Error("load config failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	opts := render.FromConfig(cfg.Render)
	sheet, err := styles.LoadSheet(cfg.Render.StylesDir)
	if err != nil {
		l.Error("load styles failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	opts.Sheet = sheet
	fonts := styles.NewFontLibrary()
	if err := fonts.LoadDir(cfg.Render.FontsDir); err != nil {
		l.Error("load fonts failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	opts.Fonts = fonts

	if *dryRun {
		cmdArgs, err := render.BuildCommand(plan, *out, opts)
		if err != nil {
			l.Error("build command failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("ffmpeg", strings.Join(cmdArgs, " "))
		return
	}
	if err := render.Render(plan, *out, opts); err != nil {
		l.Error("render failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("Rendered", *out)
}

func runProbe(l *slog.Logger, args []string) {
	if len(args) < 1 {
		fmt.Println("probe requires at least one media file")
		usage()
		os.Exit(2)
	}
	prober := media.FFProbe{}
	failed := false
	for _, p := range args {
		d, err := prober.MediaDuration(p)
		if err != nil {
			l.Error("probe failed", slog.String("path", p), slog.Any("err", err))
			fmt.Printf("%s: %v\n", p, err)
			failed = true
			continue
		}
		fmt.Printf("%s: %.3fs\n", p, d)
	}
	if failed {
		os.Exit(1)
	}
}

func runStyles(l *slog.Logger, args []string) {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}
	switch sub {
	case "list":
		cfg, _, err := config.Load()
		if err != nil {
			l.Error("load config failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		dir := cfg.Render.StylesDir
		if len(args) > 0 {
			dir = args[0]
		}
		sheet, err := styles.LoadSheet(dir)
		if err != nil {
			l.Error("load styles failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		for _, name := range sheet.Names() {
			st, ok := sheet.Resolve(name)
			if !ok {
				continue
			}
			line := fmt.Sprintf("%-10s %s %gpt #%02X%02X%02X", name, st.Font.Family, st.Font.SizePt, st.Color.R, st.Color.G, st.Color.B)
			if st.Font.Weight >= 700 {
				line += " bold"
			}
			if st.Font.Italic {
				line += " italic"
			}
			if st.Stroke != nil {
				line += fmt.Sprintf(" stroke %g", st.StrokeWidth)
			}
			fmt.Println(line)
		}
	case "pack":
		if len(args) < 1 {
			fmt.Println("styles pack requires <dest.zip>")
			usage()
			os.Exit(2)
		}
		if err := stylepack.Export(".", args[0]); err != nil {
			l.Error("style pack export failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Exported style pack to", args[0])
	case "install":
		if len(args) < 1 {
			fmt.Println("styles install requires <pack.zip>")
			usage()
			os.Exit(2)
		}
		n, err := stylepack.Install(".", args[0])
		if err != nil {
			l.Error("style pack install failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Installed %d files from %s\n", n, args[0])
	default:
		fmt.Println("unknown styles command:", sub)
		usage()
		os.Exit(2)
	}
}

func serveHelp() {
	fmt.Println("The compile service is a separate binary: ttvserver")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  DATABASE_URL or TTV_PG_DSN   Postgres connection string")
	fmt.Println("  PORT or ADDR                 Listen address (default :8080)")
	fmt.Println("  TTV_AUTH_SECRET              HMAC secret for bearer tokens")
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  POST /api/auth/token         Issue a bearer token")
	fmt.Println("  POST /api/jobs               Compile a document into a stored plan")
	fmt.Println("  GET  /api/jobs               List recent jobs")
	fmt.Println("  GET  /api/jobs/{id}/plan     Fetch a stored plan")
	fmt.Println("  GET  /api/search?q=...       Full-text search over narration scripts")
	fmt.Println("  GET  /healthz /readyz /version")
}

// newCompiler wires the pipeline collaborators the way the config asks:
// speech engine by name, probe cache over ffprobe when enabled, library
// roots anchored at the document's directory. The returned closer releases
// the probe cache when one was opened.
func newCompiler(cfg config.AppConfig, workspace string, opts pipeline.Options) (*pipeline.Compiler, func(), error) {
	key, err := config.APIKey()
	if err != nil {
		return nil, nil, err
	}
	provider, err := tts.New(cfg.TTS.Engine, tts.Options{BaseURL: cfg.TTS.BaseURL, APIKey: key})
	if err != nil {
		return nil, nil, err
	}

	roots := libraryRoots(cfg.Media.LibraryRoots, workspace)
	var prober media.Prober = media.FFProbe{}
	closer := func() {}
	if cfg.Media.ProbeCache {
		if cache, err := media.OpenCache(roots[0]); err == nil {
			prober = cache.Prober(prober)
			closer = func() { _ = cache.Close() }
		}
	}
	return &pipeline.Compiler{
		TTS:     provider,
		Prober:  prober,
		Library: media.NewLibrary(roots...),
		Opts:    opts,
	}, closer, nil
}

// libraryRoots resolves the configured roots against the document's directory
// and appends the directory itself so document-relative references work
// without configuration.
func libraryRoots(configured []string, workspace string) []string {
	roots := make([]string, 0, len(configured)+1)
	for _, r := range configured {
		if !filepath.IsAbs(r) {
			r = filepath.Join(workspace, r)
		}
		roots = append(roots, r)
	}
	return append(roots, workspace)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
