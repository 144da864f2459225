package httpapi

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
	"github.com/itsariadust/qrattendance/station/internal/attendance/service"
	"github.com/itsariadust/qrattendance/station/internal/display"
)

// ViewSource supplies the latest presentation snapshot.
type ViewSource interface {
	Snapshot() *display.View
}

// StateSource reports the capture loop's state.
type StateSource interface {
	State() capture.State
}

type Dependencies struct {
	Logger  *log.Logger
	Addr    string
	Display ViewSource
	Capture StateSource
	Records *service.RecordLookup
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	display    ViewSource
	capture    StateSource
	records    *service.RecordLookup
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:  d.Logger,
		display: d.Display,
		capture: d.Capture,
		records: d.Records,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/log", s.handleLog)
		r.Get("/frame", s.handleFrame)
		r.Get("/picture", s.handlePicture)
		r.Get("/records/{recordID}", s.handleRecord)
		r.Get("/students/{studentNo}/picture", s.handleStudentPicture)
	})

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state := capture.StateStopped
	if s.capture != nil {
		state = s.capture.State()
	}
	writeJSON(w, http.StatusOK, statusFromView(s.display.Snapshot(), state, time.Now().UTC()))
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	v := s.display.Snapshot()

	if acceptsProtobuf(r) {
		msg, err := logToProto(v.Log)
		if err != nil {
			s.logger.Printf("log proto encode error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
			return
		}
		writeProto(w, http.StatusOK, msg)
		return
	}

	writeJSON(w, http.StatusOK, logFromView(v))
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	v := s.display.Snapshot()
	if v.Frame == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	img := v.Frame.Image()
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		s.logger.Printf("frame encode error: frame=%s: %v", v.Frame.TraceID, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Frame-Seq", strconv.FormatUint(v.Frame.Seq, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handlePicture(w http.ResponseWriter, _ *http.Request) {
	v := s.display.Snapshot()
	if len(v.Picture) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeBlob(w, v.Picture)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_record_id", "record id must be a positive integer")
		return
	}

	d, err := s.records.Detail(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "record_not_found", err.Error())
		case errors.Is(err, service.ErrStoreUnavailable):
			s.logger.Printf("record lookup error: %v", err)
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", "attendance records unavailable")
		default:
			s.logger.Printf("record lookup error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleStudentPicture(w http.ResponseWriter, r *http.Request) {
	pic, err := s.records.Picture(r.Context(), chi.URLParam(r, "studentNo"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPictureNotFound):
			writeError(w, http.StatusNotFound, "picture_not_found", err.Error())
		case errors.Is(err, service.ErrStoreUnavailable):
			s.logger.Printf("picture lookup error: %v", err)
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", "attendance records unavailable")
		default:
			s.logger.Printf("picture lookup error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeBlob(w, pic)
}
