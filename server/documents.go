package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// documentResponse is one stored document on the wire
type documentResponse struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// collectionResponse is a collection snapshot plus its version counter
type collectionResponse struct {
	Documents []documentResponse `json:"documents"`
	Version   int64              `json:"version"`
}

// handleCreateDocument stores a new document and returns its generated id
func (s *Server) handleCreateDocument(c echo.Context) error {
	userID := c.Get("user_id").(string)
	collection := c.Param("collection")

	data, err := readDocumentBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid document body"})
	}

	id := uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO documents (id, user_id, collection, data)
		VALUES ($1, $2, $3, $4)`,
		id, userID, collection, data,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	if err := s.bumpCollection(userID, collection); err != nil {
		c.Logger().Error("db error:", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// handleGetDocument returns a single document, 404 when absent
func (s *Server) handleGetDocument(c echo.Context) error {
	userID := c.Get("user_id").(string)
	collection := c.Param("collection")
	id := c.Param("id")

	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM documents
		WHERE id = $1 AND user_id = $2 AND collection = $3`,
		id, userID, collection,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "document not found"})
	}
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, documentResponse{ID: id, Data: json.RawMessage(data)})
}

// handleUpdateDocument merges a partial document into the stored one
func (s *Server) handleUpdateDocument(c echo.Context) error {
	userID := c.Get("user_id").(string)
	collection := c.Param("collection")
	id := c.Param("id")

	patch, err := readDocumentBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid document body"})
	}

	result, err := s.db.Exec(`
		UPDATE documents SET data = data || $1::jsonb, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND collection = $4`,
		patch, id, userID, collection,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "document not found"})
	}

	if err := s.bumpCollection(userID, collection); err != nil {
		c.Logger().Error("db error:", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeleteDocument removes a document. Deleting an absent document
// succeeds; only an actual removal bumps the collection version.
func (s *Server) handleDeleteDocument(c echo.Context) error {
	userID := c.Get("user_id").(string)
	collection := c.Param("collection")
	id := c.Param("id")

	result, err := s.db.Exec(`
		DELETE FROM documents
		WHERE id = $1 AND user_id = $2 AND collection = $3`,
		id, userID, collection,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	if n, _ := result.RowsAffected(); n > 0 {
		if err := s.bumpCollection(userID, collection); err != nil {
			c.Logger().Error("db error:", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleListDocuments returns the collection snapshot, optionally filtered
// by a single field equality (?field=isImportant&equals=true)
func (s *Server) handleListDocuments(c echo.Context) error {
	userID := c.Get("user_id").(string)
	collection := c.Param("collection")

	docs, err := s.listDocuments(userID, collection, c.QueryParam("field"), c.QueryParam("equals"))
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	version, err := s.collectionVersion(userID, collection)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, collectionResponse{Documents: docs, Version: version})
}

// handleChanges long-polls until the collection version passes ?since=N
// (or the wait window ends), then returns the current snapshot. Clients
// use it as the transport for live queries.
func (s *Server) handleChanges(c echo.Context) error {
	userID := c.Get("user_id").(string)
	collection := c.Param("collection")

	since := int64(0)
	if v := c.QueryParam("since"); v != "" {
		since, _ = strconv.ParseInt(v, 10, 64)
	}

	deadline := time.Now().Add(25 * time.Second)
	for {
		version, err := s.collectionVersion(userID, collection)
		if err != nil {
			c.Logger().Error("db error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}

		if version > since || time.Now().After(deadline) {
			docs, err := s.listDocuments(userID, collection, c.QueryParam("field"), c.QueryParam("equals"))
			if err != nil {
				c.Logger().Error("db error:", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
			return c.JSON(http.StatusOK, collectionResponse{Documents: docs, Version: version})
		}

		select {
		case <-c.Request().Context().Done():
			return c.NoContent(http.StatusNoContent)
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (s *Server) listDocuments(userID, collection, field, equals string) ([]documentResponse, error) {
	var rows *sql.Rows
	var err error

	if field != "" {
		rows, err = s.db.Query(`
			SELECT id, data FROM documents
			WHERE user_id = $1 AND collection = $2 AND data->>$3 = $4
			ORDER BY created_at ASC`,
			userID, collection, field, equals,
		)
	} else {
		rows, err = s.db.Query(`
			SELECT id, data FROM documents
			WHERE user_id = $1 AND collection = $2
			ORDER BY created_at ASC`,
			userID, collection,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []documentResponse{}
	for rows.Next() {
		var doc documentResponse
		var data []byte
		if err := rows.Scan(&doc.ID, &data); err != nil {
			return nil, err
		}
		doc.Data = json.RawMessage(data)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Server) collectionVersion(userID, collection string) (int64, error) {
	var version int64
	err := s.db.QueryRow(`
		SELECT version FROM collection_versions
		WHERE user_id = $1 AND collection = $2`,
		userID, collection,
	).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return version, err
}

// bumpCollection advances the per-user collection version so change polls
// wake up
func (s *Server) bumpCollection(userID, collection string) error {
	_, err := s.db.Exec(`
		INSERT INTO collection_versions (user_id, collection, version)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, collection)
		DO UPDATE SET version = collection_versions.version + 1`,
		userID, collection,
	)
	return err
}

func readDocumentBody(c echo.Context) ([]byte, error) {
	var body json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return nil, err
	}
	// Reject non-object payloads early; jsonb concatenation needs objects
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	return body, nil
}
