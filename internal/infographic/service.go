// Package infographic orchestrates the flood-infographic pipeline:
// resolve affected areas, render the map, compose the final raster, and
// report a structured result. No stage error ever escapes Generate.
package infographic

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pesisirlab/rob-infografis/internal/boundary"
	"github.com/pesisirlab/rob-infografis/internal/compose"
	"github.com/pesisirlab/rob-infografis/internal/config"
	"github.com/pesisirlab/rob-infografis/internal/legend"
	"github.com/pesisirlab/rob-infografis/internal/render"
)

// Category is the output subdirectory an infographic belongs to.
type Category string

const (
	// CategorySebaran holds daily distribution infographics.
	CategorySebaran Category = "sebaran"
	// CategoryRekap holds monthly recap infographics.
	CategoryRekap Category = "rekap"
)

const (
	dailyPrefix   = "flood_daily"
	monthlyPrefix = "flood_monthly_recap"
)

// Request describes one infographic to generate.
type Request struct {
	AffectedAreas []string
	// KecamatanList is the legacy alias for AffectedAreas; the current
	// name wins when both are supplied.
	//
	// Deprecated: use AffectedAreas.
	KecamatanList []string
	PeriodLabel   string
	MonthlyRecap  bool
}

// Result is the structured pipeline outcome. Exactly one of Image and
// Error is set. FilePath is empty whenever persistence did not happen,
// independent of Success; a failed best-effort save surfaces in Warning.
type Result struct {
	Success  bool
	Image    image.Image
	FileName string
	FilePath string
	Category Category
	Warning  string
	Error    string
}

// Options configures a Service. Zero fields fall back to sensible
// defaults where one exists; paths have no defaults and come from config.
type Options struct {
	DatasetPath        string
	NameField          string
	CacheDataset       bool
	DailyBackground    string
	MonthlyBackground  string
	FontPath           string
	OutputBaseDir      string
	Projector          render.Projector
	LegendSideWidth    int
	LegendBottomHeight int
	// Now is the clock used for output filenames; tests inject it.
	Now func() time.Time
}

// OptionsFromConfig maps the application configuration onto service
// options, selecting the projector implementation from render.projection.
func OptionsFromConfig(cfg *config.Config) Options {
	var proj render.Projector
	if cfg.Render.Projection == "none" {
		proj = render.NullProjector{}
	} else {
		proj = render.FullProjector{Extent: boundary.Box{
			MinLon: cfg.Render.Extent.MinLon,
			MinLat: cfg.Render.Extent.MinLat,
			MaxLon: cfg.Render.Extent.MaxLon,
			MaxLat: cfg.Render.Extent.MaxLat,
		}}
	}
	return Options{
		DatasetPath:        cfg.Spatial.DatasetPath,
		NameField:          cfg.Spatial.NameField,
		CacheDataset:       cfg.Spatial.CacheDataset,
		DailyBackground:    cfg.Assets.DailyBackground,
		MonthlyBackground:  cfg.Assets.MonthlyBackground,
		FontPath:           cfg.Assets.FontPath,
		OutputBaseDir:      cfg.Output.BaseDir,
		Projector:          proj,
		LegendSideWidth:    cfg.Legend.SideWidth,
		LegendBottomHeight: cfg.Legend.BottomHeight,
	}
}

// Service generates infographics. Each Generate call is an independent
// pipeline; the only shared state is the read-only dataset cache and the
// parsed font.
type Service struct {
	opts Options
	log  *zap.Logger

	fontOnce sync.Once
	fonts    *compose.FontSet
	fontErr  error
}

// New builds a Service. Output directories are not touched here; call
// EnsureOutputDirs as an explicit initialization step.
func New(opts Options) *Service {
	if opts.NameField == "" {
		opts.NameField = "NAMOBJ"
	}
	if opts.Projector == nil {
		opts.Projector = render.FullProjector{Extent: boundary.Box{
			MinLon: 94, MinLat: -12, MaxLon: 142, MaxLat: 8,
		}}
	}
	if opts.LegendSideWidth <= 0 {
		opts.LegendSideWidth = 1050
	}
	if opts.LegendBottomHeight <= 0 {
		opts.LegendBottomHeight = 1400
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		opts: opts,
		log:  zap.L().With(zap.String("component", "infographic")),
	}
}

// EnsureOutputDirs creates the per-category output directories.
func (s *Service) EnsureOutputDirs() error {
	for _, cat := range []Category{CategorySebaran, CategoryRekap} {
		dir := filepath.Join(s.opts.OutputBaseDir, string(cat))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "infographic: create output dir %s", dir)
		}
	}
	return nil
}

// Generate runs the full pipeline for one request and always returns a
// result record; stage failures become Result.Error.
func (s *Service) Generate(ctx context.Context, req Request) Result {
	areas := dedupe(req.AffectedAreas)
	if len(areas) == 0 {
		areas = dedupe(req.KecamatanList)
	}
	if len(areas) == 0 {
		return Result{Error: "affected areas must not be empty"}
	}

	mode := render.Daily
	category := CategorySebaran
	prefix := dailyPrefix
	if req.MonthlyRecap {
		mode = render.MonthlyRecap
		category = CategoryRekap
		prefix = monthlyPrefix
	}
	fileName := fmt.Sprintf("%s_%s.png", prefix, s.opts.Now().Format("20060102_150405"))
	savePath := filepath.Join(s.opts.OutputBaseDir, string(category), fileName)

	log := s.log.With(
		zap.String("mode", mode.String()),
		zap.Int("areas", len(areas)),
		zap.String("file", fileName),
	)

	img, err := s.build(ctx, areas, req.PeriodLabel, mode)
	if err != nil {
		log.Warn("infographic generation failed", zap.Error(err))
		return Result{Category: category, FileName: fileName, Error: err.Error()}
	}

	res := Result{
		Success:  true,
		Image:    img,
		FileName: fileName,
		Category: category,
	}

	// Best-effort persistence: a read-only target never fails the request.
	if err := compose.SavePNG(img, savePath); err != nil {
		res.Warning = err.Error()
		log.Warn("infographic not persisted", zap.Error(err))
	} else {
		res.FilePath = savePath
	}

	log.Info("infographic generated", zap.Bool("persisted", res.FilePath != ""))
	return res
}

// build runs the rendering stages and returns the composed image.
func (s *Service) build(ctx context.Context, areas []string, periodLabel string, mode render.Mode) (image.Image, error) {
	fonts, err := s.loadFonts()
	if err != nil {
		return nil, err
	}

	// Degraded monthly path: no dataset access, no rendering.
	if mode == render.MonthlyRecap && !s.opts.Projector.Available() {
		return compose.Placeholder(
			"Rekap bulanan membutuhkan dukungan proyeksi peta dan hanya tersedia di server internal.",
			fonts.Face(36),
		), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "infographic: canceled")
	}

	ds, err := s.loadDataset()
	if err != nil {
		return nil, err
	}

	matched, canonical, err := ds.Resolve(areas)
	if err != nil {
		return nil, err
	}

	mapImg, err := render.Render(ds, matched, render.Options{
		Mode:      mode,
		Projector: s.opts.Projector,
		LabelFace: fonts.Face(28),
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "infographic: canceled")
	}

	bgPath := s.opts.DailyBackground
	if mode == render.MonthlyRecap {
		bgPath = s.opts.MonthlyBackground
	}
	bg, err := compose.LoadBackground(bgPath)
	if err != nil {
		return nil, err
	}

	var layout compose.Layout
	var panel image.Image
	titleFace, itemFace := fonts.Face(48), fonts.Face(40)
	if mode == render.MonthlyRecap {
		layout = compose.MonthlyLayout(s.opts.LegendBottomHeight)
		panel = legend.Compose(canonical, bg.Bounds().Dx(), s.opts.LegendBottomHeight,
			legend.MonthlyOptions(titleFace, itemFace))
	} else {
		layout = compose.DailyLayout(s.opts.LegendSideWidth)
		panel = legend.Compose(canonical, s.opts.LegendSideWidth, bg.Bounds().Dy(),
			legend.DailyOptions(titleFace, itemFace))
	}

	return compose.Compose(compose.Inputs{
		Background:  bg,
		Map:         mapImg,
		Legend:      panel,
		PeriodLabel: periodLabel,
		LabelFace:   fonts.Face(layout.LabelSize),
	}, layout), nil
}

func (s *Service) loadDataset() (*boundary.Dataset, error) {
	if s.opts.CacheDataset {
		return boundary.LoadShapefileCached(s.opts.DatasetPath, s.opts.NameField)
	}
	return boundary.LoadShapefile(s.opts.DatasetPath, s.opts.NameField)
}

func (s *Service) loadFonts() (*compose.FontSet, error) {
	s.fontOnce.Do(func() {
		s.fonts, s.fontErr = compose.LoadFonts(s.opts.FontPath)
	})
	return s.fonts, s.fontErr
}

// dedupe removes repeated names preserving first occurrence order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
