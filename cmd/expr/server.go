package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/exprkit/expr"
)

// server exposes the evaluator over HTTP.
type server struct {
	env *environment
	log zerolog.Logger
}

type evalRequest struct {
	Source    string             `json:"source"`
	Variables map[string]float64 `json:"variables,omitempty"`
}

type evalResponse struct {
	Result float64 `json:"result"`
	Text   string  `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func runServer(addr string, env *environment) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("service", "expr").Logger()
	s := &server{env: env, log: logger}

	router := mux.NewRouter()
	router.HandleFunc("/v1/eval", s.handleEval)
	router.HandleFunc("/v1/validate/{kind}", s.handleValidate)

	logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, router)
}

func (s *server) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeStatus(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "Bad Request")
		return
	}
	e := expr.NewExpression(req.Source, s.env.options(req.Variables)...)
	v, err := e.Evaluate()
	if err != nil {
		s.log.Info().Str("source", req.Source).Err(err).Msg("eval failed")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	s.log.Info().Str("source", req.Source).Float64("result", v).Msg("eval")
	writeJSON(w, http.StatusOK, evalResponse{Result: v, Text: e.String()})
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeStatus(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	name := r.URL.Query().Get("name")
	var valid bool
	switch kind := mux.Vars(r)["kind"]; kind {
	case "identifier":
		valid = expr.IsValidIdentifier(name)
	case "operator":
		valid = expr.IsValidOperator(name)
	default:
		writeStatus(w, http.StatusNotFound, "Not Found")
		return
	}
	s.log.Debug().Str("name", name).Bool("valid", valid).Msg("validate")
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func writeStatus(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	fmt.Fprintln(w, message)
}

func writeJSON(w http.ResponseWriter, code int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(value)
}
