package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-registry/internal/handler"
	"github.com/iliyamo/parking-registry/internal/model"
	"github.com/iliyamo/parking-registry/internal/repository"
	"github.com/iliyamo/parking-registry/internal/service"
	"github.com/iliyamo/parking-registry/internal/utils"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newServer(t *testing.T, adminSecret string) (*echo.Echo, *clock) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := repository.NewMemoryStore()
	clk := &clock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	sessions := service.NewSessionManager(store, log, service.WithClock(clk.now))

	e := echo.New()
	RegisterRoutes(e, nil)
	RegisterClients(e, handler.NewClientHandler(store.Clients(), log), func(next echo.HandlerFunc) echo.HandlerFunc { return next })
	RegisterParkings(e, handler.NewParkingHandler(store.Parkings(), log), adminSecret)
	RegisterSessions(e, handler.NewSessionHandler(sessions, log))
	return e, clk
}

func call(t *testing.T, e *echo.Echo, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func lot(t *testing.T, e *echo.Echo, id string) model.Parking {
	t.Helper()
	rec := call(t, e, http.MethodGet, "/parkings/"+id, "")
	var p model.Parking
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode lot: %v", err)
	}
	return p
}

func TestAdmitReleaseScenario(t *testing.T) {
	e, clk := newServer(t, "")

	if rec := call(t, e, http.MethodPost, "/clients", `{"name":"John","surname":"Doe","credit_card":"1234","car_number":"ABC123"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create client: %d %s", rec.Code, rec.Body.String())
	}
	if rec := call(t, e, http.MethodPost, "/parkings", `{"address":"Main St","opened":true,"count_places":10,"count_available_places":10}`); rec.Code != http.StatusCreated {
		t.Fatalf("create lot: %d %s", rec.Code, rec.Body.String())
	}

	rec := call(t, e, http.MethodPost, "/client_parkings", `{"client_id":1,"parking_id":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admit: %d %s", rec.Code, rec.Body.String())
	}
	if got := lot(t, e, "1").CountAvailablePlaces; got != 9 {
		t.Errorf("expected 9 available after admit, got %d", got)
	}

	if rec := call(t, e, http.MethodPost, "/client_parkings", `{"client_id":1,"parking_id":1}`); rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on second admit, got %d", rec.Code)
	}

	clk.t = clk.t.Add(2 * time.Hour)
	rec = call(t, e, http.MethodDelete, "/client_parkings", `{"client_id":1,"parking_id":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("release: %d %s", rec.Code, rec.Body.String())
	}
	var s model.ClientParking
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if !s.TimeOut.Valid || !s.TimeOut.Time.After(s.TimeIn) {
		t.Errorf("expected time_out after time_in, got %+v", s)
	}
	if got := lot(t, e, "1").CountAvailablePlaces; got != 10 {
		t.Errorf("expected 10 available after release, got %d", got)
	}

	if rec := call(t, e, http.MethodDelete, "/client_parkings", `{"client_id":1,"parking_id":1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on second release, got %d", rec.Code)
	}
	if got := lot(t, e, "1").CountAvailablePlaces; got != 10 {
		t.Errorf("expected counter unchanged after failed release, got %d", got)
	}

	if rec := call(t, e, http.MethodPost, "/client_parkings", `{"client_id":1,"parking_id":1}`); rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on admit after release, got %d", rec.Code)
	}
	if got := lot(t, e, "1").CountAvailablePlaces; got != 10 {
		t.Errorf("expected counter unchanged after rejected admit, got %d", got)
	}
}

func TestAdmitErrors(t *testing.T) {
	e, _ := newServer(t, "")
	call(t, e, http.MethodPost, "/clients", `{"name":"Jane","surname":"Roe","credit_card":"9","car_number":""}`)
	call(t, e, http.MethodPost, "/parkings", `{"address":"Closed Rd","opened":false,"count_places":5,"count_available_places":5}`)

	if rec := call(t, e, http.MethodPost, "/client_parkings", `{"client_id":1,"parking_id":1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for closed lot, got %d", rec.Code)
	}
	if rec := call(t, e, http.MethodPost, "/client_parkings", `{"client_id":9,"parking_id":1}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown client, got %d", rec.Code)
	}
	if rec := call(t, e, http.MethodDelete, "/client_parkings", `{"client_id":1,"parking_id":1}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing session, got %d", rec.Code)
	}
	if rec := call(t, e, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("expected healthz 200, got %d", rec.Code)
	}
}

func TestParkingCreationGuard(t *testing.T) {
	e, _ := newServer(t, "secret")
	body := `{"address":"Main St","opened":true,"count_places":1,"count_available_places":1}`

	if rec := call(t, e, http.MethodPost, "/parkings", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	tok, err := utils.NewAccessToken("secret", "admin", utils.RoleAdmin, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if rec := call(t, e, http.MethodPost, "/parkings", body, "Authorization", "Bearer "+tok.Token); rec.Code != http.StatusCreated {
		t.Errorf("expected 201 with token, got %d", rec.Code)
	}
	if rec := call(t, e, http.MethodGet, "/parkings", ""); rec.Code != http.StatusOK {
		t.Errorf("expected open list, got %d", rec.Code)
	}
}

func TestRegisterAdminSkippedWithoutSecret(t *testing.T) {
	e := echo.New()
	RegisterAdmin(e, &handler.AdminHandler{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
