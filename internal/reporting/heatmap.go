package reporting

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"solar-platform/internal/models"
)

// HeatmapFileName is where the gridmap command writes the page inside the data directory
const HeatmapFileName = "solar_irradiance_heatmap.html"

// HeatmapSeries is the cleaned series of one grid point
type HeatmapSeries struct {
	Latitude  float64
	Longitude float64
	Records   []models.CleanedRecord
}

// HeatmapFrame holds every grid point's irradiance for one hour.
// Each point is [latitude, longitude, irradiance].
type HeatmapFrame struct {
	Time   time.Time    `json:"time"`
	Points [][3]float64 `json:"points"`
}

// BuildFrames pivots per-point series into per-hour frames ordered by time.
// Missing irradiance values are left out of their frame.
func BuildFrames(series []HeatmapSeries) []HeatmapFrame {
	byHour := make(map[time.Time][][3]float64)
	for _, s := range series {
		for _, rec := range s.Records {
			if rec.Irradiance == nil {
				continue
			}
			byHour[rec.Timestamp] = append(byHour[rec.Timestamp], [3]float64{s.Latitude, s.Longitude, *rec.Irradiance})
		}
	}

	frames := make([]HeatmapFrame, 0, len(byHour))
	for ts, points := range byHour {
		frames = append(frames, HeatmapFrame{Time: ts, Points: points})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Time.Before(frames[j].Time) })
	return frames
}

// HeatmapPage describes the rendered page
type HeatmapPage struct {
	Title           string
	CenterLatitude  float64
	CenterLongitude float64
	Zoom            int
	Frames          []HeatmapFrame
}

type heatmapView struct {
	HeatmapPage
	Labels []string
	Max    float64
}

// RenderHeatmap writes a standalone Leaflet page with a heat layer and a time slider
func RenderHeatmap(w io.Writer, page HeatmapPage) error {
	if len(page.Frames) == 0 {
		return fmt.Errorf("no heatmap frames to render")
	}
	if page.Zoom == 0 {
		page.Zoom = 8
	}
	if page.Title == "" {
		page.Title = "Solar Irradiance Heatmap"
	}

	view := heatmapView{HeatmapPage: page, Labels: make([]string, len(page.Frames))}
	for i, frame := range page.Frames {
		view.Labels[i] = frame.Time.UTC().Format("2006-01-02 15:04")
		for _, pt := range frame.Points {
			if pt[2] > view.Max {
				view.Max = pt[2]
			}
		}
	}
	if view.Max == 0 {
		view.Max = 1
	}

	return heatmapTemplate.Execute(w, view)
}

var heatmapTemplate = template.Must(template.New("heatmap").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
<style>
  html, body { margin: 0; height: 100%; font-family: sans-serif; }
  #map { position: absolute; top: 0; bottom: 56px; width: 100%; }
  #controls { position: absolute; bottom: 0; height: 56px; width: 100%; display: flex; align-items: center; gap: 12px; padding: 0 16px; box-sizing: border-box; }
  #slider { flex: 1; }
</style>
</head>
<body>
<div id="map"></div>
<div id="controls">
  <button id="play">Play</button>
  <input id="slider" type="range" min="0" max="0" value="0">
  <span id="label"></span>
</div>
<script>
  var frames = {{.Frames}};
  var labels = {{.Labels}};
  var map = L.map("map").setView([{{.CenterLatitude}}, {{.CenterLongitude}}], {{.Zoom}});
  L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
    attribution: "&copy; OpenStreetMap contributors"
  }).addTo(map);
  var heat = L.heatLayer([], { radius: 25, max: {{.Max}} }).addTo(map);
  var slider = document.getElementById("slider");
  var label = document.getElementById("label");
  slider.max = frames.length - 1;

  function show(i) {
    heat.setLatLngs(frames[i].points);
    label.textContent = labels[i];
    slider.value = i;
  }

  var timer = null;
  document.getElementById("play").addEventListener("click", function () {
    if (timer) { clearInterval(timer); timer = null; this.textContent = "Play"; return; }
    this.textContent = "Pause";
    timer = setInterval(function () { show((Number(slider.value) + 1) % frames.length); }, 500);
  });
  slider.addEventListener("input", function () { show(Number(slider.value)); });
  show(0);
</script>
</body>
</html>
`))
