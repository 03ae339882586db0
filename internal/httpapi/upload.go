package httpapi

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"boosterdraft/internal/api/response"
	"boosterdraft/internal/catalog"
	"boosterdraft/internal/draftmodel"
	"boosterdraft/internal/packgen"
)

const maxUploadBytes = 16 << 20 // 16MiB: list + optional card database

var uploadFormTemplate = template.Must(template.New("upload").Parse(`<!doctype html>
<html><body>
<form method="post" action="/api/start" enctype="multipart/form-data">
  <label>Card list (.txt): <input type="file" name="list" required></label><br>
  <label>Card database (.xml, optional): <input type="file" name="card_database"></label><br>
  <label>Packs per seat: <input type="number" name="packs_per_seat" value="3"></label><br>
  <label>Cards per pack: <input type="number" name="cards_per_pack" value="15"></label><br>
  <label>Unique cards: <input type="checkbox" name="unique_cards"></label><br>
  <label>Use rarities: <input type="checkbox" name="use_rarities" checked></label><br>
  <label>Rares per pack: <input type="number" name="rares_per_pack" value="1"></label><br>
  <label>Uncommons per pack: <input type="number" name="uncommons_per_pack" value="3"></label><br>
  <label>Commons per pack: <input type="number" name="commons_per_pack" value="11"></label><br>
  <label>Mythic incidence: <input type="text" name="mythic_incidence" value="0.125"></label><br>
  <label>Max seats: <input type="number" name="max_seats" value="8"></label><br>
  <button type="submit">Start draft</button>
</form>
</body></html>`))

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = uploadFormTemplate.Execute(w, nil)
}

// handleDraftPage serves the placeholder landing page for a created
// draft; the real client is a single-page app that speaks to /ws/{id}
// and is out of this component's scope.
func (s *Server) handleDraftPage(w http.ResponseWriter, r *http.Request) {
	id := draftmodel.DraftID(chi.URLParam(r, "draftID"))
	if _, ok := s.reg.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><html><body>Draft %s — connect to <code>/ws/%s</code>.</body></html>", id, id)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.reg.List()
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, summaries)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id := draftmodel.DraftID(chi.URLParam(r, "draftID"))
	summary, ok := s.reg.Get(id)
	if !ok {
		response.NotFound(w, fmt.Errorf("draft %s not found", id))
		return
	}
	response.Success(w, summary)
}

// handleStartDraft validates an uploaded card list (plus optional custom
// database) and pack configuration, builds a Catalog, and creates a new
// draft in PhaseLobby (spec §4.7).
func (s *Server) handleStartDraft(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, fmt.Errorf("parse upload: %w", err))
		return
	}

	listFile, _, err := r.FormFile("list")
	if err != nil {
		response.BadRequest(w, fmt.Errorf("missing card list: %w", err))
		return
	}
	defer listFile.Close()

	names, err := catalog.ParseList(listFile)
	if err != nil {
		response.BadRequest(w, fmt.Errorf("parse card list: %w", err))
		return
	}

	db := catalog.Builtin()
	if dbFile, _, err := r.FormFile("card_database"); err == nil {
		defer dbFile.Close()
		custom, err := catalog.ParseDatabase(dbFile)
		if err != nil {
			response.BadRequest(w, fmt.Errorf("parse card database: %w", err))
			return
		}
		db = catalog.MergeDatabases(db, custom)
	}

	cat, err := catalog.Build(names, db)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	spec := s.parsePackSpecForm(r)
	if err := spec.Validate(); err != nil {
		response.BadRequest(w, err)
		return
	}
	if err := packgen.Validate(cat, spec); err != nil {
		response.BadRequest(w, err)
		return
	}

	eng, err := s.reg.Create(spec, cat, time.Now())
	if err != nil {
		response.InternalError(w, fmt.Errorf("create draft: %w", err))
		return
	}

	http.Redirect(w, r, "/"+string(eng.Draft().ID), http.StatusSeeOther)
}

// parsePackSpecForm reads PackSpec fields from the multipart form,
// falling back to the server's configured defaults for any field left
// blank.
func (s *Server) parsePackSpecForm(r *http.Request) draftmodel.PackSpec {
	def := s.cfg.Draft.DefaultPackSpec
	return draftmodel.PackSpec{
		PacksPerSeat:     formInt(r, "packs_per_seat", def.PacksPerSeat),
		CardsPerPack:     formInt(r, "cards_per_pack", def.CardsPerPack),
		UniqueCards:      formBool(r, "unique_cards", def.UniqueCards),
		UseRarities:      formBool(r, "use_rarities", def.UseRarities),
		RaresPerPack:     formInt(r, "rares_per_pack", def.RaresPerPack),
		UncommonsPerPack: formInt(r, "uncommons_per_pack", def.UncommonsPerPack),
		CommonsPerPack:   formInt(r, "commons_per_pack", def.CommonsPerPack),
		MythicIncidence:  formFloat(r, "mythic_incidence", def.MythicIncidence),
		MaxSeats:         formInt(r, "max_seats", def.MaxSeats),
	}
}

func formInt(r *http.Request, key string, fallback int) int {
	v := r.FormValue(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func formFloat(r *http.Request, key string, fallback float64) float64 {
	v := r.FormValue(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func formBool(r *http.Request, key string, fallback bool) bool {
	v := r.FormValue(key)
	if v == "" {
		return fallback
	}
	return v == "on" || v == "true" || v == "1"
}
