package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mind-engage/langinsight/internal/users"
)

type userRow struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"` // plaintext optional; empty keeps the existing hash
}

// POST /api/users  (multipart file= CSV/JSON, or raw JSON array)
func BulkUpsertUsersHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				writeError(w, http.StatusBadRequest, "file required")
				return
			}
			defer f.Close()
			raw, err := io.ReadAll(f)
			if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
				writeError(w, http.StatusBadRequest, "empty file")
				return
			}
			// sniff CSV vs JSON by first non-space byte
			if t := strings.TrimSpace(string(raw)); t[0] == '[' {
				if err := json.Unmarshal(raw, &rows); err != nil {
					writeError(w, http.StatusBadRequest, "bad json")
					return
				}
			} else {
				rows, err = parseUsersCSV(strings.NewReader(string(raw)))
				if err != nil {
					writeError(w, http.StatusBadRequest, "bad csv: "+err.Error())
					return
				}
			}
		} else if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			writeError(w, http.StatusBadRequest, "expected JSON array or multipart file")
			return
		}

		batch := make([]users.Upsert, 0, len(rows))
		for _, row := range rows {
			role := strings.ToLower(strings.TrimSpace(row.Role))
			if role == "" {
				role = users.RoleFamily
			}
			batch = append(batch, users.Upsert{Username: row.Username, Role: role, Password: row.Password})
		}
		out, err := store.UpsertMany(r.Context(), batch)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"upserted": len(out), "users": out})
	}
}

// GET /api/users
func ListUsersHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		if role := r.URL.Query().Get("role"); role != "" {
			kept := list[:0]
			for _, u := range list {
				if u.Role == role {
					kept = append(kept, u)
				}
			}
			list = kept
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func parseUsersCSV(r io.Reader) ([]userRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"username", "role"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	var rows []userRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := userRow{
			Username: rec[idx["username"]],
			Role:     rec[idx["role"]],
		}
		if i, ok := idx["password"]; ok {
			row.Password = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
