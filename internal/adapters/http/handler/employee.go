package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/platform/metrics"
)

const (
	deleteConfirmationMessage = "¿Está seguro de que desea eliminar el empleado? Por favor confirmar la eliminación."
	exportPageSize            = 200
)

var errInvalidQueryParam = errors.New("invalid query parameter")

// EmployeeHandler は社員 API の HTTP ハンドラです。
type EmployeeHandler struct {
	svc     employee.UseCase
	metrics *metrics.Metrics
}

// NewEmployeeHandler は EmployeeHandler を生成します。metrics は nil でも構いません。
func NewEmployeeHandler(svc employee.UseCase, m *metrics.Metrics) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, metrics: m}
}

// Register はルートを登録します。
func (h *EmployeeHandler) Register(r chi.Router) {
	r.Get("/empleados", h.handleList)
	r.Get("/empleados/exportar", h.handleExport)
	r.Get("/empleados/{id}", h.handleGet)
	r.Post("/crearEmpleado", h.handleCreate)
	r.Put("/editarEmpleado/{id}", h.handleUpdate)
	r.Delete("/eliminarEmpleado/{id}", h.handleDelete)
}

func (h *EmployeeHandler) handleList(w http.ResponseWriter, r *http.Request) {
	in, err := parseListQuery(r)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.ListEmployees(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPageResponse(result))
}

func (h *EmployeeHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.svc.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: id})
	if err != nil {
		writeEmployeeError(w, r, id, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toEmployeeResponse(found))
}

func (h *EmployeeHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "El cuerpo de la solicitud no es un JSON válido.")
		return
	}

	in, err := req.toCreateInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateEmployee(r.Context(), in)
	h.metrics.ObserveEmployeeWrite("create", err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toEmployeeResponse(created))
}

func (h *EmployeeHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "El cuerpo de la solicitud no es un JSON válido.")
		return
	}

	updated, err := h.svc.UpdateEmployee(r.Context(), req.toUpdateInput(id))
	h.metrics.ObserveEmployeeWrite("update", err)
	if err != nil {
		writeEmployeeError(w, r, id, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toEmployeeResponse(updated))
}

// handleDelete は存在確認の後、confirmar=true の場合に限り削除します。
func (h *EmployeeHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: id}); err != nil {
		writeEmployeeError(w, r, id, err)
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirmar"))
	if !confirmed {
		writeMessage(w, r, http.StatusBadRequest, deleteConfirmationMessage)
		return
	}

	err := h.svc.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{ID: id})
	h.metrics.ObserveEmployeeWrite("delete", err)
	if err != nil {
		writeEmployeeError(w, r, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleExport は一覧と同じ条件に一致する全社員を XLSX で返します。
func (h *EmployeeHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	in, err := parseListQuery(r)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var employees []*employee.Employee
	for page := 0; ; page++ {
		result, err := h.svc.ListEmployees(r.Context(), employee.ListEmployeesInput{Filter: in.Filter, Page: page, Size: exportPageSize})
		if err != nil {
			writeError(w, r, err)
			return
		}
		employees = append(employees, result.Employees...)
		if page+1 >= result.TotalPages() {
			break
		}
	}

	buf, err := renderEmployeesWorkbook(employees)
	if err != nil {
		writeError(w, r, fmt.Errorf("export employees: %w", err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="empleados.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to stream export")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, r, http.StatusBadRequest, "El ID del empleado no es válido.")
		return 0, false
	}
	return id, true
}

func parseListQuery(r *http.Request) (employee.ListEmployeesInput, error) {
	q := r.URL.Query()

	idType, err := optionalInt64(q.Get("idTipoIdentificacion"))
	if err != nil {
		return employee.ListEmployeesInput{}, queryError("idTipoIdentificacion")
	}
	country, err := optionalInt64(q.Get("idPais"))
	if err != nil {
		return employee.ListEmployeesInput{}, queryError("idPais")
	}
	page, err := optionalInt(q.Get("page"))
	if err != nil {
		return employee.ListEmployeesInput{}, queryError("page")
	}
	size, err := optionalInt(q.Get("size"))
	if err != nil {
		return employee.ListEmployeesInput{}, queryError("size")
	}

	return employee.ListEmployeesInput{
		Filter: employee.Filter{
			FirstName:            q.Get("primerNombre"),
			OtherNames:           q.Get("otrosNombres"),
			FirstSurname:         q.Get("primerApellido"),
			SecondSurname:        q.Get("segundoApellido"),
			IdentificationTypeID: idType,
			IdentificationNumber: q.Get("numeroIdentificacion"),
			CountryID:            country,
			Email:                q.Get("correo"),
			Status:               employee.Status(q.Get("estado")),
		},
		Page: page,
		Size: size,
	}, nil
}

func queryError(name string) error {
	return fmt.Errorf("El parámetro '%s' debe ser numérico: %w", name, errInvalidQueryParam)
}

func optionalInt64(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
