package infographic

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesisirlab/rob-infografis/internal/boundary"
	"github.com/pesisirlab/rob-infografis/internal/render"
)

// writeDataset writes a polygon shapefile fixture with a NAMOBJ attribute.
func writeDataset(t *testing.T, path string, names []string) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("NAMOBJ", 64)})

	for i, name := range names {
		minX := 100.0 + float64(i)*2
		pts := []shp.Point{
			{X: minX, Y: -8},
			{X: minX, Y: -6},
			{X: minX + 1, Y: -6},
			{X: minX + 1, Y: -8},
			{X: minX, Y: -8},
		}
		poly := &shp.Polygon{
			Box:       shp.Box{MinX: minX, MinY: -8, MaxX: minX + 1, MaxY: -6},
			NumParts:  1,
			NumPoints: int32(len(pts)),
			Parts:     []int32{0},
			Points:    pts,
		}
		w.Write(poly)
		require.NoError(t, w.WriteAttribute(i, 0, name))
	}
	w.Close()
}

func writeBackground(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{20, 60, 120, 255}}, image.Point{}, draw.Src)

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// testService builds a service over fresh fixtures in dir.
func testService(t *testing.T, dir string, names []string) *Service {
	t.Helper()

	dsPath := filepath.Join(dir, "kecamatan.shp")
	writeDataset(t, dsPath, names)

	dailyBG := filepath.Join(dir, "bg_daily.png")
	monthlyBG := filepath.Join(dir, "bg_monthly.png")
	writeBackground(t, dailyBG, 600, 400)
	writeBackground(t, monthlyBG, 600, 400)

	svc := New(Options{
		DatasetPath:        dsPath,
		NameField:          "NAMOBJ",
		DailyBackground:    dailyBG,
		MonthlyBackground:  monthlyBG,
		OutputBaseDir:      filepath.Join(dir, "out"),
		Projector:          render.FullProjector{Extent: boundary.Box{MinLon: 94, MinLat: -12, MaxLon: 142, MaxLat: 8}},
		LegendSideWidth:    300,
		LegendBottomHeight: 200,
	})
	require.NoError(t, svc.EnsureOutputDirs())
	return svc
}

func TestGenerateEmptyInput(t *testing.T) {
	svc := New(Options{DatasetPath: "does-not-matter.shp", OutputBaseDir: t.TempDir()})

	for _, req := range []Request{
		{},
		{AffectedAreas: []string{}},
		{AffectedAreas: []string{""}},
	} {
		res := svc.Generate(context.Background(), req)
		assert.False(t, res.Success)
		assert.Nil(t, res.Image)
		assert.NotEmpty(t, res.Error)
	}
}

func TestGenerateDailySuccess(t *testing.T) {
	svc := testService(t, t.TempDir(), []string{"SEMARANG UTARA", "TUGU"})

	res := svc.Generate(context.Background(), Request{
		AffectedAreas: []string{"TUGU", "SEMARANG UTARA"},
		PeriodLabel:   "12 Januari 2026",
	})

	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Image)
	assert.Equal(t, CategorySebaran, res.Category)
	assert.True(t, strings.HasPrefix(res.FileName, "flood_daily_"), res.FileName)
	assert.True(t, strings.HasSuffix(res.FileName, ".png"), res.FileName)
	assert.Empty(t, res.Error)

	// Side legend: composed width is background plus panel width.
	assert.Equal(t, 600+300, res.Image.Bounds().Dx())
	assert.Equal(t, 400, res.Image.Bounds().Dy())

	// Persisted under the sebaran category.
	require.NotEmpty(t, res.FilePath)
	_, err := os.Stat(res.FilePath)
	assert.NoError(t, err)
	assert.Contains(t, res.FilePath, string(CategorySebaran))
}

func TestGenerateMonthlySuccess(t *testing.T) {
	svc := testService(t, t.TempDir(), []string{"SEMARANG UTARA", "TUGU"})

	res := svc.Generate(context.Background(), Request{
		AffectedAreas: []string{"SEMARANG UTARA"},
		PeriodLabel:   "Januari 2026",
		MonthlyRecap:  true,
	})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, CategoryRekap, res.Category)
	assert.True(t, strings.HasPrefix(res.FileName, "flood_monthly_recap_"), res.FileName)

	// Bottom legend: composed height is background plus panel height.
	assert.Equal(t, 600, res.Image.Bounds().Dx())
	assert.Equal(t, 400+200, res.Image.Bounds().Dy())
	assert.Contains(t, res.FilePath, string(CategoryRekap))
}

func TestGenerateLegacyAlias(t *testing.T) {
	svc := testService(t, t.TempDir(), []string{"SEMARANG UTARA", "TUGU"})

	// Legacy parameter alone still works.
	res := svc.Generate(context.Background(), Request{
		KecamatanList: []string{"TUGU"},
	})
	require.True(t, res.Success, res.Error)

	// The current name wins when both are supplied: KecamatanList names
	// a sub-district that does not exist, but AffectedAreas does.
	res = svc.Generate(context.Background(), Request{
		AffectedAreas: []string{"TUGU"},
		KecamatanList: []string{"NO SUCH AREA"},
	})
	require.True(t, res.Success, res.Error)
}

func TestGenerateTotalMismatch(t *testing.T) {
	svc := testService(t, t.TempDir(), []string{"SEMARANG UTARA"})

	res := svc.Generate(context.Background(), Request{
		AffectedAreas: []string{"NO SUCH AREA"},
	})

	assert.False(t, res.Success)
	assert.Nil(t, res.Image)
	assert.Contains(t, res.Error, "no affected area")
}

func TestGenerateDatasetUnreadable(t *testing.T) {
	dir := t.TempDir()
	svc := New(Options{
		DatasetPath:   filepath.Join(dir, "missing.shp"),
		OutputBaseDir: filepath.Join(dir, "out"),
	})

	res := svc.Generate(context.Background(), Request{AffectedAreas: []string{"TUGU"}})

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestGenerateDegradedMonthly(t *testing.T) {
	dir := t.TempDir()
	svc := New(Options{
		// Dataset deliberately bogus: the degraded path must not touch it.
		DatasetPath:   filepath.Join(dir, "missing.shp"),
		OutputBaseDir: filepath.Join(dir, "out"),
		Projector:     render.NullProjector{},
	})
	require.NoError(t, svc.EnsureOutputDirs())

	res := svc.Generate(context.Background(), Request{
		AffectedAreas: []string{"ANY AREA"},
		PeriodLabel:   "Januari 2026",
		MonthlyRecap:  true,
	})

	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Image)
	assert.Empty(t, res.Error)
	// Placeholder canvas, not a composited infographic.
	assert.Equal(t, 960, res.Image.Bounds().Dx())
	assert.Equal(t, 540, res.Image.Bounds().Dy())
}

func TestGenerateDegradedDailyStillRenders(t *testing.T) {
	dir := t.TempDir()
	svc := testService(t, dir, []string{"SEMARANG UTARA"})
	svc.opts.Projector = render.NullProjector{}

	res := svc.Generate(context.Background(), Request{
		AffectedAreas: []string{"SEMARANG UTARA"},
	})

	require.True(t, res.Success, res.Error)
	// Daily output is a real composition, not the placeholder.
	assert.Equal(t, 600+300, res.Image.Bounds().Dx())
}

func TestGeneratePersistenceFailure(t *testing.T) {
	dir := t.TempDir()
	svc := testService(t, dir, []string{"TUGU"})

	// Point the output base at a regular file: every save must fail, but
	// the request still succeeds with the in-memory image.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	svc.opts.OutputBaseDir = blocker

	res := svc.Generate(context.Background(), Request{AffectedAreas: []string{"TUGU"}})

	require.True(t, res.Success, res.Error)
	assert.NotNil(t, res.Image)
	assert.Empty(t, res.FilePath)
	assert.NotEmpty(t, res.Warning)
}

func TestGenerateFilenameTimestamps(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	now := base

	svc := New(Options{
		DatasetPath:   filepath.Join(dir, "missing.shp"),
		OutputBaseDir: filepath.Join(dir, "out"),
		Projector:     render.NullProjector{},
		Now:           func() time.Time { return now },
	})
	require.NoError(t, svc.EnsureOutputDirs())

	req := Request{AffectedAreas: []string{"ANY"}, MonthlyRecap: true}

	first := svc.Generate(context.Background(), req)
	now = base.Add(time.Second)
	second := svc.Generate(context.Background(), req)

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, "flood_monthly_recap_20260115_103000.png", first.FileName)
	assert.Equal(t, "flood_monthly_recap_20260115_103001.png", second.FileName)
	assert.NotEqual(t, first.FileName, second.FileName)

	// Within the same second the names collide; accepted limitation.
	now = base
	third := svc.Generate(context.Background(), req)
	assert.Equal(t, first.FileName, third.FileName)
}

func TestGenerateCanceledContext(t *testing.T) {
	svc := testService(t, t.TempDir(), []string{"TUGU"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := svc.Generate(ctx, Request{AffectedAreas: []string{"TUGU"}})
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestEnsureOutputDirs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")
	svc := New(Options{OutputBaseDir: base})

	require.NoError(t, svc.EnsureOutputDirs())

	for _, cat := range []Category{CategorySebaran, CategoryRekap} {
		info, err := os.Stat(filepath.Join(base, string(cat)))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, dedupe([]string{"A", "B", "A", "", "B"}))
	assert.Empty(t, dedupe(nil))
}
