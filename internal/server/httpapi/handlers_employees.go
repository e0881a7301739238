package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mpetrenko/hrauth/internal/common"
	"github.com/mpetrenko/hrauth/internal/server/models"
)

type employeeRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Position  string  `json:"position"`
	Salary    float64 `json:"salary"`
	Status    string  `json:"status"`
}

type employeeResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Position  string  `json:"position"`
	Salary    float64 `json:"salary"`
	Status    string  `json:"status"`
	Version   int64   `json:"version"`
}

func toEmployeeResponse(e *models.Employee) employeeResponse {
	return employeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Phone:     e.Phone,
		Position:  e.Position,
		Salary:    e.Salary,
		Status:    e.Status,
		Version:   e.Version,
	}
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := s.employees.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "listing employees failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]employeeResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployeeResponse(e))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	e, err := s.employees.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		s.logger.Error(r.Context(), "fetching employee failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, http.StatusOK, toEmployeeResponse(e))
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "first_name, last_name and email are required")
		return
	}

	created, err := s.employees.Create(r.Context(), &models.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
		Salary:    req.Salary,
		Status:    req.Status,
	})
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateIdentity) {
			writeError(w, http.StatusConflict, "employee email already exists")
			return
		}
		s.logger.Error(r.Context(), "creating employee failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, http.StatusCreated, toEmployeeResponse(created))
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := s.employees.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		s.logger.Error(r.Context(), "fetching employee failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	current.FirstName = req.FirstName
	current.LastName = req.LastName
	current.Email = req.Email
	current.Phone = req.Phone
	current.Position = req.Position
	current.Salary = req.Salary
	if req.Status != "" {
		current.Status = req.Status
	}

	if err := s.employees.Update(r.Context(), current); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			writeError(w, http.StatusNotFound, "employee not found")
		case errors.Is(err, common.ErrVersionConflict):
			writeError(w, http.StatusConflict, "employee was modified concurrently, retry")
		default:
			s.logger.Error(r.Context(), "updating employee failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeSuccess(w, http.StatusOK, toEmployeeResponse(current))
}
