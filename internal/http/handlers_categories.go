package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type createCategoryRequest struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
}

type updateCategoryRequest struct {
	Name  *string `json:"name"`
	Type  *string `json:"type"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == 0 && r.URL.Query().Get("userId") != "" {
		id, err := queryID(r, "userId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.UserID = id
	}

	ctype, err := core.ParseCategoryType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := s.store.CreateCategory(r.Context(), core.Category{
		UserID: req.UserID,
		Name:   req.Name,
		Type:   ctype,
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := s.store.GetCategory(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// handleCategorySubpath mirrors handleAccountSubpath for the category routes
// with the same ServeMux ranking problem.
func (s *Server) handleCategorySubpath(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "user":
		s.listCategoriesByUser(w, r, second)
	case second == "with-transactions":
		s.getCategoryWithTransactions(w, r, first)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) getCategoryWithTransactions(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := segmentID("id", rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := s.store.GetCategoryWithTransactions(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeCategories(w, categories)
}

func (s *Server) listCategoriesByUser(w http.ResponseWriter, r *http.Request, rawID string) {
	userID, err := segmentID("userId", rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	categories, err := s.store.ListCategoriesByUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeCategories(w, categories)
}

func (s *Server) handleListCategoriesByType(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctype, err := core.ParseCategoryType(r.PathValue("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	categories, err := s.store.ListCategoriesByType(r.Context(), userID, ctype)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeCategories(w, categories)
}

func (s *Server) handleListIncomeCategories(w http.ResponseWriter, r *http.Request) {
	s.listCategoriesOfType(w, r, core.CategoryIncome)
}

func (s *Server) handleListExpenseCategories(w http.ResponseWriter, r *http.Request) {
	s.listCategoriesOfType(w, r, core.CategoryExpense)
}

func (s *Server) listCategoriesOfType(w http.ResponseWriter, r *http.Request, ctype core.CategoryType) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	categories, err := s.store.ListCategoriesByType(r.Context(), userID, ctype)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeCategories(w, categories)
}

func (s *Server) handleSearchCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}
	categories, err := s.store.SearchCategoriesByName(r.Context(), userID, name)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeCategories(w, categories)
}

func (s *Server) handleCountCategoriesByType(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctype, err := core.ParseCategoryType(r.PathValue("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := s.store.CountCategoriesByType(r.Context(), userID, ctype)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	upd := core.CategoryUpdate{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	}
	if req.Type != nil {
		ctype, err := core.ParseCategoryType(*req.Type)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		upd.Type = &ctype
	}

	category, err := s.store.UpdateCategory(r.Context(), id, upd)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeCategories(w http.ResponseWriter, categories []core.Category) {
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}
