package handler

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/gateway/service/workspace"
	"accsetup/internal/setup"
)

// CookieName binds a browser to its workspace.
const CookieName = "accsetup_workspace"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type uiText struct {
	Title, Subtitle, Criteria, CriteriaHint       string
	Car, Track, Style                             string
	Generate, Generating, Loading, LoadingHint    string
	Result, Refine, RefineHint, RefinePlaceholder string
	Refining, Oops, Changes, Export, Footer       string
}

var texts = map[string]uiText{
	"hu": {
		Title:             "ACC Setup Generátor",
		Subtitle:          "AI-alapú beállítások az Assetto Corsa Competizione-hez",
		Criteria:          "Válaszd ki a kritériumokat",
		CriteriaHint:      "Add meg az autót, a pályát és a vezetési stílusod, hogy személyre szabott beállítást kapj.",
		Car:               "Autó",
		Track:             "Pálya",
		Style:             "Vezetési stílus",
		Generate:          "Beállítás Létrehozása",
		Generating:        "Generálás...",
		Loading:           "Beállítások generálása...",
		LoadingHint:       "Az AI versenymérnökünk dolgozik az ügyön. Ez eltarthat egy pillanatig.",
		Result:            "Javasolt Beállítások",
		Refine:            "Finomhangolás",
		RefineHint:        "Milyen az autó? Írd le a tapasztalataidat, és az AI finomhangolja a beállításokat. (Pl. \"Túlságosan alulkormányzott a lassú kanyarokban.\")",
		RefinePlaceholder: "Írd le a tapasztalataidat...",
		Refining:          "Finomhangolás...",
		Oops:              "Hoppá!",
		Changes:           "Változások",
		Export:            "Exportálás",
		Footer:            "Készült az Assetto Corsa Competizione rajongói számára.",
	},
	"en": {
		Title:             "ACC Setup Generator",
		Subtitle:          "AI-driven setups for Assetto Corsa Competizione",
		Criteria:          "Choose your criteria",
		CriteriaHint:      "Pick the car, the track and your driving style to get a tailored setup.",
		Car:               "Car",
		Track:             "Track",
		Style:             "Driving style",
		Generate:          "Create Setup",
		Generating:        "Generating...",
		Loading:           "Generating setup...",
		LoadingHint:       "Our AI race engineer is on it. This can take a moment.",
		Result:            "Suggested Setup",
		Refine:            "Fine-tuning",
		RefineHint:        "How does the car feel? Describe it and the AI fine-tunes the setup. (E.g. \"Too much understeer in slow corners.\")",
		RefinePlaceholder: "Describe what you experience...",
		Refining:          "Fine-tuning...",
		Oops:              "Oops!",
		Changes:           "Changes",
		Export:            "Export",
		Footer:            "Made for Assetto Corsa Competizione fans.",
	},
}

func textFor(lang string) uiText {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return texts["en"]
	}
	return texts["hu"]
}

type fieldView struct {
	Label   string
	Value   string
	Unit    string
	Changed bool
}

type sectionView struct {
	Name   string
	Label  string
	Fields []fieldView
}

type pageData struct {
	Lang      string
	T         uiText
	Catalog   *catalog.Catalog
	Selection advisor.Selection
	Workspace string
	Summary   string
	Sections  []sectionView
	Changes   []setup.Change
	HasSetup  bool
	Session   bool
	Busy      bool
	Error     string
}

func (h *Handler) Index(c *gin.Context) {
	view, err := h.svc.Get(h.workspaceID(c))
	if err != nil {
		view = workspace.View{}
	}
	h.render(c, http.StatusOK, view, "")
}

func (h *Handler) Generate(c *gin.Context) {
	sel := advisor.Selection{
		Car:   c.PostForm("car"),
		Track: c.PostForm("track"),
		Style: c.PostForm("style"),
	}
	view, err := h.svc.Generate(c.Request.Context(), h.workspaceID(c), sel)
	if view.ID != "" {
		h.setWorkspace(c, view.ID)
	}
	if view.Selection == (advisor.Selection{}) {
		view.Selection = sel
	}
	h.respond(c, "generate", view, err)
}

func (h *Handler) Refine(c *gin.Context) {
	view, err := h.svc.Refine(c.Request.Context(), h.workspaceID(c), c.PostForm("feedback"))
	if errors.Is(err, workspace.ErrNotFound) {
		// An expired or missing workspace means there is no session to refine.
		err = &advisor.PreconditionError{Err: advisor.ErrNoSession}
	}
	h.respond(c, "refine", view, err)
}

func (h *Handler) respond(c *gin.Context, op string, view workspace.View, err error) {
	if err == nil {
		h.render(c, http.StatusOK, view, "")
		return
	}
	status, body := describe(err, h.lang(c))
	if status >= http.StatusInternalServerError {
		log.Printf("web %s failed: %v", op, err)
	}
	h.render(c, status, view, body.Message)
}

func (h *Handler) render(c *gin.Context, status int, view workspace.View, errMsg string) {
	lang := h.lang(c)
	data := pageData{
		Lang:      lang,
		T:         textFor(lang),
		Catalog:   h.svc.Catalog(),
		Selection: view.Selection,
		Workspace: view.ID,
		Changes:   view.Changes,
		Session:   view.HasSession,
		Busy:      view.Busy,
		Error:     errMsg,
	}
	if view.Setup != nil {
		data.HasSetup = true
		data.Summary, data.Sections = sections(*view.Setup, view.Changes, lang)
	}
	c.HTML(status, "index.html", data)
}

func sections(st setup.Setup, changes []setup.Change, lang string) (string, []sectionView) {
	changed := make(map[string]bool, len(changes))
	for _, ch := range changes {
		changed[ch.Path] = true
	}
	var (
		summary string
		out     []sectionView
	)
	for _, sec := range setup.Sections(st) {
		if sec.Name == "summary" {
			summary = st.Summary
			continue
		}
		sv := sectionView{Name: sec.Name, Label: setup.SectionLabel(sec.Name, lang)}
		for _, f := range sec.Fields {
			sv.Fields = append(sv.Fields, fieldView{
				Label:   setup.FieldLabel(f.Path, lang),
				Value:   f.Value,
				Unit:    setup.Unit(f.Path),
				Changed: changed[f.Path],
			})
		}
		out = append(out, sv)
	}
	return summary, out
}

func (h *Handler) workspaceID(c *gin.Context) string {
	id, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(id)
}

func (h *Handler) setWorkspace(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, int((24 * time.Hour).Seconds()), "/", "", false, true)
}
