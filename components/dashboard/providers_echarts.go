package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	// missingValue is the ECharts placeholder for a gap in a series.
	missingValue = "-"
)

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartSeries represents a set of values plotted for a given legend entry.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
}

// ChartPoint is one value on the x axis. Missing points render as gaps.
type ChartPoint struct {
	Label   string
	Value   float64
	Missing bool
}

// ChartSpec is everything needed to render one chart.
type ChartSpec struct {
	Title    string
	Subtitle string
	XAxis    []string
	Series   []ChartSeries
	Theme    string
}

// EChartsProvider renders server-side chart HTML for the given chart type.
type EChartsProvider struct {
	chartType  string
	cache      RenderCache
	theme      string
	assetsHost string
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// NewEChartsProvider builds a provider for "line" or "bar" charts.
func NewEChartsProvider(chartType string, opts ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		chartType: strings.ToLower(chartType),
		cache:     sharedChartCache,
		theme:     types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithType returns a provider for another chart type that shares this
// provider's cache, theme and assets host.
func (p *EChartsProvider) WithType(chartType string) *EChartsProvider {
	clone := *p
	clone.chartType = strings.ToLower(chartType)
	return &clone
}

// ChartType reports the configured chart type.
func (p *EChartsProvider) ChartType() string {
	return p.chartType
}

// Render returns the chart HTML for spec, going through the render cache
// when key is not empty.
func (p *EChartsProvider) Render(ctx context.Context, key string, spec ChartSpec) (WidgetData, error) {
	if len(spec.Series) == 0 {
		return nil, fmt.Errorf("dashboard: chart series is required")
	}
	if spec.Theme == "" {
		spec.Theme = p.theme
	}
	renderFn := func() (string, error) {
		return p.render(spec)
	}

	var (
		html string
		err  error
	)
	if p.cache != nil && key != "" {
		html, err = p.cache.GetOrRender(ctx, fmt.Sprintf("%s:%s", p.chartType, key), renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"chart_html": html,
		"chart_type": p.chartType,
		"title":      spec.Title,
		"subtitle":   spec.Subtitle,
		"theme":      spec.Theme,
	}, nil
}

func (p *EChartsProvider) render(spec ChartSpec) (string, error) {
	switch p.chartType {
	case "line":
		line := charts.NewLine()
		line.SetGlobalOptions(p.globalChartOptions(spec)...)
		line.SetXAxis(spec.XAxis)
		for _, s := range spec.Series {
			line.AddSeries(s.Name, toLineData(s.Points))
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{
			Smooth:       opts.Bool(true),
			ConnectNulls: opts.Bool(false),
		}))
		return renderChart(line)
	case "bar":
		bar := charts.NewBar()
		bar.SetGlobalOptions(p.globalChartOptions(spec)...)
		bar.SetXAxis(spec.XAxis)
		for _, s := range spec.Series {
			bar.AddSeries(s.Name, toBarData(s.Points))
		}
		return renderChart(bar)
	default:
		return "", fmt.Errorf("dashboard: unsupported chart type: %s", p.chartType)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("dashboard: render chart: %w", err)
	}
	return buf.String(), nil
}

func (p *EChartsProvider) globalChartOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  spec.Theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	}
}

func pointValue(point ChartPoint) any {
	if point.Missing {
		return missingValue
	}
	return point.Value
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.Label, Value: pointValue(point)}
	}
	return data
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.Label, Value: pointValue(point)}
	}
	return data
}
