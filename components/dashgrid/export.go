package dashgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Export formats.
const (
	ExportHTML = "html"
	ExportJSON = "json"
)

const exportChartHeight = "320px"

// ChartSeries is one named series parsed from a widget payload.
type ChartSeries struct {
	Name   string
	Points []SeriesPoint
}

// SeriesPoint is one labeled value within a series.
type SeriesPoint struct {
	Label string
	Value float64
}

// Exporter renders dashboard snapshots to static documents. Chart widgets are
// rendered server-side with go-echarts; table, metric, and text widgets get
// plain markup.
type Exporter struct {
	cache RenderCache
	theme string
}

// ExporterOption customizes exporter behavior.
type ExporterOption func(*Exporter)

// WithExportCache injects a render cache.
func WithExportCache(cache RenderCache) ExporterOption {
	return func(e *Exporter) { e.cache = cache }
}

// WithExportTheme sets the chart theme (defaults to Westeros).
func WithExportTheme(theme string) ExporterOption {
	return func(e *Exporter) { e.theme = theme }
}

// NewExporter builds an exporter with a shared five-minute render cache.
func NewExporter(options ...ExporterOption) *Exporter {
	e := &Exporter{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Export renders the snapshot in the requested format.
func (e *Exporter) Export(_ context.Context, snap Snapshot, data map[string]WidgetPayload, format string) ([]byte, error) {
	switch format {
	case ExportJSON:
		return json.MarshalIndent(struct {
			Dashboard Dashboard                `json:"dashboard"`
			Data      map[string]WidgetPayload `json:"data,omitempty"`
		}{Dashboard: snap.Dashboard, Data: data}, "", "  ")
	case ExportHTML, "":
		return e.exportHTML(snap, data)
	default:
		return nil, fmt.Errorf("dashgrid: unsupported export format %q", format)
	}
}

func (e *Exporter) exportHTML(snap Snapshot, data map[string]WidgetPayload) ([]byte, error) {
	widgets := make([]Widget, len(snap.Dashboard.Widgets))
	copy(widgets, snap.Dashboard.Widgets)
	sort.SliceStable(widgets, func(i, j int) bool {
		if widgets[i].Position.Y != widgets[j].Position.Y {
			return widgets[i].Position.Y < widgets[j].Position.Y
		}
		return widgets[i].Position.X < widgets[j].Position.X
	})

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n", template.HTMLEscapeString(snap.Dashboard.Name))
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", template.HTMLEscapeString(snap.Dashboard.Name))
	if snap.Dashboard.Description != "" {
		fmt.Fprintf(&buf, "<p>%s</p>\n", template.HTMLEscapeString(snap.Dashboard.Description))
	}
	for _, w := range widgets {
		if !w.Exportable {
			continue
		}
		markup, err := e.renderWidget(w, data[w.ID])
		if err != nil {
			return nil, fmt.Errorf("dashgrid: render widget %s: %w", w.ID, err)
		}
		fmt.Fprintf(&buf, "<section class=\"widget widget-%s\" data-x=\"%d\" data-y=\"%d\" data-w=\"%d\" data-h=\"%d\">\n<h2>%s</h2>\n%s\n</section>\n",
			w.Type, w.Position.X, w.Position.Y, w.Position.Width, w.Position.Height,
			template.HTMLEscapeString(w.Title), markup)
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

func (e *Exporter) renderWidget(w Widget, payload WidgetPayload) (string, error) {
	render := func() (string, error) {
		switch w.Type {
		case WidgetLineChart:
			return e.renderLine(w, payload)
		case WidgetBarChart:
			return e.renderBar(w, payload)
		case WidgetGauge:
			return e.renderGauge(w, payload)
		case WidgetCalendarHeatmap:
			return e.renderHeatmap(w, payload)
		case WidgetTable:
			return renderTable(payload), nil
		case WidgetMetricCard:
			return renderMetric(payload), nil
		case WidgetFreeText:
			return renderFreeText(w, payload), nil
		default:
			return renderFallback(payload)
		}
	}
	if e.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s", w.ID, w.Type, payloadHash(payload))
	return e.cache.GetOrRender(key, render)
}

func (e *Exporter) renderLine(w Widget, payload WidgetPayload) (string, error) {
	series := parseSeries(payload["series"])
	if len(series) == 0 {
		return "<p>no data</p>", nil
	}
	line := charts.NewLine()
	line.SetGlobalOptions(e.globalChartOptions(w.Title)...)
	line.SetXAxis(axisLabels(payload, series))
	for _, s := range series {
		points := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			points[i] = opts.LineData{Value: p.Value}
		}
		line.AddSeries(s.Name, points)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func (e *Exporter) renderBar(w Widget, payload WidgetPayload) (string, error) {
	series := parseSeries(payload["series"])
	if len(series) == 0 {
		return "<p>no data</p>", nil
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(e.globalChartOptions(w.Title)...)
	bar.SetXAxis(axisLabels(payload, series))
	for _, s := range series {
		points := make([]opts.BarData, len(s.Points))
		for i, p := range s.Points {
			points[i] = opts.BarData{Value: p.Value}
		}
		bar.AddSeries(s.Name, points)
	}
	return renderChart(bar)
}

func (e *Exporter) renderGauge(w Widget, payload WidgetPayload) (string, error) {
	value := floatValue(payload["value"], 0)
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(e.globalChartOptions(w.Title)...)
	gauge.AddSeries(w.Title, []opts.GaugeData{{Name: w.Title, Value: value}})
	return renderChart(gauge)
}

// renderHeatmap lays daily points out as weekday rows by week columns, the
// calendar-heatmap convention.
func (e *Exporter) renderHeatmap(w Widget, payload WidgetPayload) (string, error) {
	series := parseSeries(payload["series"])
	if len(series) == 0 || len(series[0].Points) == 0 {
		return "<p>no data</p>", nil
	}
	points := series[0].Points
	weeks := (len(points) + 6) / 7
	xAxis := make([]string, weeks)
	for i := range xAxis {
		xAxis[i] = "W" + strconv.Itoa(i+1)
	}
	cells := make([]opts.HeatMapData, len(points))
	for i, p := range points {
		cells[i] = opts.HeatMapData{Value: [3]any{i / 7, i % 7, p.Value}}
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(e.globalChartOptions(w.Title)...)
	hm.SetXAxis(xAxis)
	hm.AddSeries(series[0].Name, cells)
	return renderChart(hm)
}

func renderTable(payload WidgetPayload) string {
	columns := stringSliceValue(payload["columns"])
	rows, _ := payload["rows"].([]any)
	var buf bytes.Buffer
	buf.WriteString("<table>")
	if len(columns) > 0 {
		buf.WriteString("<thead><tr>")
		for _, col := range columns {
			fmt.Fprintf(&buf, "<th>%s</th>", template.HTMLEscapeString(col))
		}
		buf.WriteString("</tr></thead>")
	}
	buf.WriteString("<tbody>")
	for _, row := range rows {
		cells, ok := row.([]any)
		if !ok {
			continue
		}
		buf.WriteString("<tr>")
		for _, cell := range cells {
			fmt.Fprintf(&buf, "<td>%s</td>", template.HTMLEscapeString(fmt.Sprint(cell)))
		}
		buf.WriteString("</tr>")
	}
	buf.WriteString("</tbody></table>")
	return buf.String()
}

func renderMetric(payload WidgetPayload) string {
	value := fmt.Sprint(payload["value"])
	label := stringValue(payload["label"], "")
	out := fmt.Sprintf("<div class=\"metric\"><strong>%s</strong>", template.HTMLEscapeString(value))
	if label != "" {
		out += fmt.Sprintf("<span>%s</span>", template.HTMLEscapeString(label))
	}
	return out + "</div>"
}

func renderFreeText(w Widget, payload WidgetPayload) string {
	text := stringValue(payload["text"], "")
	if text == "" {
		text = stringValue(w.DataConfig["text"], "")
	}
	return "<p>" + template.HTMLEscapeString(text) + "</p>"
}

func renderFallback(payload WidgetPayload) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return "<pre>" + template.HTMLEscapeString(string(data)) + "</pre>", nil
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) globalChartOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  e.theme,
			Width:  "100%",
			Height: exportChartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func axisLabels(payload WidgetPayload, series []ChartSeries) []string {
	if labels := stringSliceValue(payload["x_axis"]); len(labels) > 0 {
		return labels
	}
	labels := make([]string, len(series[0].Points))
	for i, p := range series[0].Points {
		if p.Label != "" {
			labels[i] = p.Label
		} else {
			labels[i] = strconv.Itoa(i + 1)
		}
	}
	return labels
}

func parseSeries(raw any) []ChartSeries {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	series := make([]ChartSeries, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		s := ChartSeries{Name: stringValue(entry["name"], "series")}
		rawPoints, _ := entry["points"].([]any)
		for _, rp := range rawPoints {
			switch point := rp.(type) {
			case map[string]any:
				s.Points = append(s.Points, SeriesPoint{
					Label: stringValue(point["label"], ""),
					Value: floatValue(point["value"], 0),
				})
			default:
				s.Points = append(s.Points, SeriesPoint{Value: floatValue(rp, 0)})
			}
		}
		series = append(series, s)
	}
	return series
}

func stringValue(raw any, fallback string) string {
	if s, ok := raw.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringSliceValue(raw any) []string {
	switch value := raw.(type) {
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

func floatValue(raw any, fallback float64) float64 {
	switch value := raw.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
