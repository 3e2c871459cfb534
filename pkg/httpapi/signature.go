package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fieldservice/reportgen/pkg/signature"
)

// signatureRequest carries captured pointer strokes from clients that have no
// canvas of their own. Each stroke is an ordered point sequence.
type signatureRequest struct {
	Width   int                 `json:"width"`
	Height  int                 `json:"height"`
	Strokes [][]signature.Point `json:"strokes"`
}

// handleSignature replays captured strokes through the signature pad and
// returns the resulting PNG data URL, ready to be submitted as a signature
// field value. An empty capture yields an empty value.
func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request) {
	var req signatureRequest
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(&req); err != nil {
		s.clientError(w, err)
		return
	}

	pad := signature.NewPad()
	if err := pad.Resize(req.Width, req.Height); err != nil {
		s.clientError(w, err)
		return
	}
	for _, stroke := range req.Strokes {
		if len(stroke) == 0 {
			continue
		}
		if err := pad.Begin(stroke[0]); err != nil {
			s.clientError(w, err)
			return
		}
		// a tap still leaves a dot
		points := stroke[1:]
		if len(points) == 0 {
			points = stroke[:1]
		}
		for _, point := range points {
			if err := pad.Extend(point); err != nil {
				s.clientError(w, err)
				return
			}
		}
		pad.End()
	}

	value, err := pad.Save()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"dataUrl": value})
}
