// server.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the HTTP surface: a thin adapter that maps
// URLs and tokens onto the core session operations. All requests and
// responses are JSON; errors come back as {"error": message} with
// the status from the error table.

package boggle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Server ties the HTTP handlers to their collaborators
type Server struct {
	cfg        *Config
	store      *Store
	vault      *TokenVault
	dice       *DiceRegistry
	dicts      *DictionaryCache
	dispatcher Dispatcher
	log        *zap.Logger
}

// NewServer wires up a server
func NewServer(
	cfg *Config,
	store *Store,
	vault *TokenVault,
	dice *DiceRegistry,
	dicts *DictionaryCache,
	dispatcher Dispatcher,
	log *zap.Logger,
) *Server {
	return &Server{
		cfg:        cfg,
		store:      store,
		vault:      vault,
		dice:       dice,
		dicts:      dicts,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Handler builds the route table
func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /options", srv.handleOptions)
	mux.HandleFunc("POST /session", srv.handleSpawnSession)

	mgmt := "/session/{session_id}/{pepper}/manage/{token}"
	mux.HandleFunc("GET "+mgmt, srv.handleManageGet)
	mux.HandleFunc("POST "+mgmt, srv.handleManagePost)
	mux.HandleFunc("DELETE "+mgmt, srv.handleManageDelete)
	mux.HandleFunc("PATCH "+mgmt+"/approve_word", srv.handleApproveWord)

	mux.HandleFunc("POST /session/{session_id}/{pepper}/join/{token}",
		srv.handleJoin)

	play := "/session/{session_id}/{pepper}/play/{player_id}/{token}"
	mux.HandleFunc("GET "+play, srv.handlePlayGet)
	mux.HandleFunc("PUT "+play, srv.handlePlayPut)
	mux.HandleFunc("DELETE "+play, srv.handlePlayDelete)

	mux.HandleFunc("GET /session/{session_id}/{pepper}/stats/{token}",
		srv.handleStats)

	return mux
}

// writeJSON encodes a response body
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps an error to its HTTP shape
func (srv *Server) writeError(w http.ResponseWriter, err error) {
	var apiError *APIError
	if errors.As(err, &apiError) {
		writeJSON(w, apiError.Status, map[string]string{"error": apiError.Msg})
		return
	}
	srv.log.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError,
		map[string]string{"error": "internal error"})
}

// pathID parses a numeric path segment
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, apiErr(404, "Unknown resource")
	}
	return id, nil
}

// sessionAuth parses the session id and pepper and verifies the
// presented token against the canonical derivation
func (srv *Server) sessionAuth(
	r *http.Request,
	derive func(sessionID int64, pepper string) string,
	badToken string,
) (sessionID int64, pepper string, err error) {
	sessionID, err = pathID(r, "session_id")
	if err != nil {
		return 0, "", err
	}
	pepper = r.PathValue("pepper")
	if !CheckToken(r.PathValue("token"), derive(sessionID, pepper)) {
		return 0, "", apiErr(403, "%s", badToken)
	}
	return sessionID, pepper, nil
}

func (srv *Server) mgmtAuth(r *http.Request) (int64, string, error) {
	return srv.sessionAuth(r, srv.vault.MgmtToken, "Bad session management token")
}

func (srv *Server) inviteAuth(r *http.Request) (int64, string, error) {
	return srv.sessionAuth(r, srv.vault.InviteToken, "Bad session token")
}

func (srv *Server) playerAuth(
	r *http.Request,
) (sessionID, playerID int64, pepper string, err error) {
	sessionID, err = pathID(r, "session_id")
	if err != nil {
		return 0, 0, "", err
	}
	playerID, err = pathID(r, "player_id")
	if err != nil {
		return 0, 0, "", err
	}
	pepper = r.PathValue("pepper")
	canonical := srv.vault.PlayerToken(sessionID, pepper, playerID)
	if !CheckToken(r.PathValue("token"), canonical) {
		return 0, 0, "", apiErr(403, "Bad player token")
	}
	return sessionID, playerID, pepper, nil
}

// decodeBody parses a JSON request body into dst
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apiErr(400, "Malformed submission data")
	}
	return nil
}

// GET /options
func (srv *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	dicts, err := ListDictionaries(srv.dicts.Dir())
	if err != nil {
		srv.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dictionaries": dicts,
		"dice_configs": srv.dice.Names(),
	})
}

// spawnRequest uses raw JSON for the dictionary so that an explicit
// null (disable gating) can be told apart from an absent key
type spawnRequest struct {
	Dictionary   json.RawMessage `json:"dictionary"`
	DiceConfig   string          `json:"dice_config"`
	RoundMinutes int             `json:"round_minutes"`
	MildScoring  bool            `json:"mild_scoring"`
}

// POST /session
func (srv *Server) handleSpawnSession(w http.ResponseWriter, r *http.Request) {
	var req spawnRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			srv.writeError(w, err)
			return
		}
	}

	available, err := ListDictionaries(srv.dicts.Dir())
	if err != nil {
		srv.writeError(w, err)
		return
	}

	var dictionary *string
	noneRequested := false
	if len(req.Dictionary) > 0 {
		var name *string
		if err := json.Unmarshal(req.Dictionary, &name); err != nil {
			srv.writeError(w, apiErr(400, "Malformed submission data"))
			return
		}
		if name == nil {
			// explicit null disables the dictionary
			noneRequested = true
		} else {
			found := false
			for _, d := range available {
				if d == *name {
					found = true
					break
				}
			}
			if !found {
				srv.writeError(w, apiErr(404,
					"The dictionary %s is not available", *name))
				return
			}
			dictionary = name
		}
	}
	if dictionary == nil && !noneRequested && len(available) == 1 {
		dictionary = &available[0]
	}

	diceConfig := req.DiceConfig
	if diceConfig == "" {
		diceConfig = srv.cfg.DefaultDiceConfig
	}
	if _, ok := srv.dice.Get(diceConfig); !ok {
		srv.writeError(w, apiErr(404,
			"The dice config %s is not available", diceConfig))
		return
	}

	roundMinutes := req.RoundMinutes
	if roundMinutes == 0 {
		roundMinutes = srv.cfg.RoundMinutes
	}
	if roundMinutes < 0 {
		srv.writeError(w, apiErr(400, "round_minutes must be positive"))
		return
	}

	sess, err := srv.store.CreateSession(
		r.Context(), diceConfig, dictionary, roundMinutes, req.MildScoring)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	pepper := NewPepper()
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":         sess.ID,
		"pepper":             pepper,
		"session_mgmt_token": srv.vault.MgmtToken(sess.ID, pepper),
		"session_token":      srv.vault.InviteToken(sess.ID, pepper),
	})
}

// GET .../manage/...
func (srv *Server) handleManageGet(w http.ResponseWriter, r *http.Request) {
	sessionID, pepper, err := srv.mgmtAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	resp, err := srv.sessionState(r.Context(), sessionID, pepper)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST .../manage/... advances the round
func (srv *Server) handleManagePost(w http.ResponseWriter, r *http.Request) {
	sessionID, _, err := srv.mgmtAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	roundNo, roundStart, err := srv.store.AdvanceRound(
		r.Context(), sessionID, srv.cfg.Countdown)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"round_no":    roundNo,
		"round_start": formatTS(roundStart),
	})
}

// DELETE .../manage/... destroys the session and its subtree
func (srv *Server) handleManageDelete(w http.ResponseWriter, r *http.Request) {
	sessionID, _, err := srv.mgmtAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	if err := srv.store.DeleteSession(r.Context(), sessionID); err != nil {
		srv.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH .../manage/.../approve_word
func (srv *Server) handleApproveWord(w http.ResponseWriter, r *http.Request) {
	sessionID, _, err := srv.mgmtAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	var req struct {
		Words []string `json:"words"`
	}
	if err := decodeBody(r, &req); err != nil {
		srv.writeError(w, err)
		return
	}
	roundNo, err := srv.store.ApproveWords(r.Context(), sessionID, req.Words)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	sess, err := srv.store.GetSession(r.Context(), sessionID)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	if sess == nil {
		srv.writeError(w, errSessionGone)
		return
	}
	groups, err := srv.store.SubmittedWords(r.Context(), sessionID, roundNo)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"round_no": roundNo,
		"scores":   EffectiveScores(groups, sess.UseMildScoring),
	})
}

// POST .../join/...
func (srv *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	sessionID, pepper, err := srv.inviteAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	var req struct {
		Name *string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		srv.writeError(w, err)
		return
	}
	if req.Name == nil || *req.Name == "" {
		srv.writeError(w, apiErr(400, "'name' is required"))
		return
	}
	p, err := srv.store.JoinSession(r.Context(), sessionID, *req.Name)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"player_id":    p.ID,
		"player_token": srv.vault.PlayerToken(sessionID, pepper, p.ID),
		"name":         p.Name,
	})
}

// GET .../play/... (players who left may still watch)
func (srv *Server) handlePlayGet(w http.ResponseWriter, r *http.Request) {
	sessionID, _, pepper, err := srv.playerAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	resp, err := srv.sessionState(r.Context(), sessionID, pepper)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PUT .../play/... submits words for the current round
func (srv *Server) handlePlayPut(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID, _, err := srv.playerAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	var req struct {
		RoundNo *int      `json:"round_no"`
		Words   *[]string `json:"words"`
	}
	if err := decodeBody(r, &req); err != nil {
		srv.writeError(w, err)
		return
	}
	if req.RoundNo == nil || req.Words == nil {
		srv.writeError(w, apiErr(400, "Submission not properly structured"))
		return
	}
	err = srv.store.SubmitWords(
		r.Context(), sessionID, playerID,
		*req.RoundNo, *req.Words, srv.cfg.GracePeriod)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{})
}

// DELETE .../play/... leaves the session
func (srv *Server) handlePlayDelete(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID, _, err := srv.playerAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	if err := srv.store.LeavePlayer(r.Context(), sessionID, playerID); err != nil {
		srv.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET .../stats/...
func (srv *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sessionID, _, err := srv.inviteAuth(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	if !srv.cfg.EnableStats {
		srv.writeError(w, apiErr(501, "Statistics are disabled"))
		return
	}
	resp, err := srv.sessionStats(r.Context(), sessionID)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
