package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Default map view, matching the dashboard's initial marker (central California).
const (
	defaultLat  = 40.0
	defaultLon  = -120.0
	defaultZoom = 5
)

const chatbotAnswer = "[Simulated Answer] Stay safe and prepared for wildfires!"

// Resource is a help link on the resources tab.
type Resource struct {
	Label string
	URL   string
}

var resources = []Resource{
	{"Contact the Federal Emergency Management Agency", "https://www.disasterassistance.gov/"},
	{"Create your own wildfire action plan", "https://readyforwildfire.org/prepare-for-wildfire/wildfire-action-plan/"},
	{"General information about wildfires", "https://namica.org/wildfires/"},
	{"Helpline for counseling (related to natural/man-made disasters)", "https://www.samhsa.gov/find-help/helplines/disaster-distress-helpline"},
	{"Resources to recover from wildfires", "https://www.cdfa.ca.gov/firerecovery/"},
	{"External list of organizations/programs that can help with wildfire recovery", "https://readyforwildfire.org/post-wildfire/who-can-help/"},
}

// pages holds one parsed template set per tab, each layered on the shared layout.
type pages struct {
	home      *template.Template
	resources *template.Template
	chatbot   *template.Template
}

func mustParsePages() *pages {
	parse := func(name string) *template.Template {
		return template.Must(template.New("layout.html").Funcs(template.FuncMap{
			"coord":  formatCoord,
			"radius": domain.FormatRadius,
			"km":     formatKm,
		}).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return &pages{
		home:      parse("home.html"),
		resources: parse("resources.html"),
		chatbot:   parse("chatbot.html"),
	}
}

// homeView is the data rendered by the home tab.
type homeView struct {
	Tab        string
	CenterLat  float64
	CenterLon  float64
	Zoom       int
	Clicked    *domain.Coordinate
	Assessment *domain.Assessment
	Error      string
}

type resourcesView struct {
	Tab       string
	Resources []Resource
}

type chatbotView struct {
	Tab      string
	Question string
	Answer   string
}

// handleHome serves the home tab. Legacy ?page=resources and ?page=chatbot
// links are routed to their tabs.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("page") {
	case "resources":
		s.handleResources(w, r)
		return
	case "chatbot":
		s.handleChatbot(w, r)
		return
	}

	view := homeView{Tab: "home", CenterLat: defaultLat, CenterLon: defaultLon, Zoom: defaultZoom}
	status := http.StatusOK

	coord, err := parseCoordinate(r)
	switch {
	case errors.Is(err, errMissingCoordinate):
		// No click yet.
	case err != nil:
		view.Error = err.Error()
		status = http.StatusBadRequest
	default:
		view.Clicked = &coord
		view.CenterLat, view.CenterLon = coord.Lat, coord.Lon
		result, err := s.assessor.Assess(r.Context(), coord)
		if err != nil {
			status, view.Error = classifyError(err)
			s.logger.Warn("dashboard assessment failed", "lat", coord.Lat, "lon", coord.Lon, "error", err)
		} else {
			view.Assessment = &result
		}
	}

	s.render(w, status, s.pages.home, view)
}

func (s *Server) handleResources(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, s.pages.resources, resourcesView{Tab: "resources", Resources: resources})
}

// handleChatbot echoes the question with a canned safety answer.
func (s *Server) handleChatbot(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.FormValue("q"))
	view := chatbotView{Tab: "chatbot", Question: q}
	if q != "" {
		view.Answer = chatbotAnswer
	}
	s.render(w, http.StatusOK, s.pages.chatbot, view)
}

// render buffers the page so a template error yields a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		s.logger.Error("render page failed", "template", t.Name(), "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func formatKm(d *float64) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(*d, 'f', 1, 64)
}

// formatCoord renders a coordinate with four decimals, the precision used
// for cache keys.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
