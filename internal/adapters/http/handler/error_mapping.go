package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
	"github.com/ogurasousui/hr-records/internal/core/employee"
)

const validationMessage = "El campo '%s' solo permite caracteres de la A a la Z, mayúsculas, sin acentos ni Ñ y su longitud máxima es de %d letras"

// wireFieldNames は検証項目と JSON プロパティ名の対応です。
var wireFieldNames = map[employee.Field]string{
	employee.FieldFirstName:            "primerNombre",
	employee.FieldOtherNames:           "otrosNombres",
	employee.FieldFirstSurname:         "primerApellido",
	employee.FieldSecondSurname:        "segundoApellido",
	employee.FieldIdentificationNumber: "numeroIdentificacion",
	employee.FieldEmail:                "correo",
}

var referenceNames = map[catalog.Kind]string{
	catalog.KindCountry:            "país",
	catalog.KindArea:               "área",
	catalog.KindIdentificationType: "tipo de identificación",
}

// writeError はドメインエラーを HTTP ステータスとレスポンスに変換します。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr  *employee.ValidationError
		referenceErr   *employee.ReferenceNotFoundError
		conflictErr    *employee.ConflictError
		unsupportedErr *employee.UnsupportedCountryError
	)

	switch {
	case errors.As(err, &validationErr):
		field := wireFieldName(validationErr.Field)
		message := fmt.Sprintf(validationMessage, field, validationErr.MaxLength)
		if validationErr.Field == employee.FieldIdentificationNumber {
			message = fmt.Sprintf("El campo '%s' es obligatorio, solo permite letras, números y guiones y su longitud máxima es de %d caracteres", field, validationErr.MaxLength)
		}
		writeJSON(w, r, http.StatusBadRequest, map[string]string{
			statusErrorKey: statusLabel(http.StatusBadRequest),
			field:          message,
		})
	case errors.As(err, &conflictErr):
		writeMessage(w, r, http.StatusConflict, conflictMessage(conflictErr.Field))
	case errors.Is(err, employee.ErrUniquenessConflict):
		writeMessage(w, r, http.StatusConflict, "Error de integridad de datos. Verifique la información ingresada.")
	case errors.Is(err, employee.ErrEmailSpaceExhausted):
		writeMessage(w, r, http.StatusConflict, "No fue posible generar un correo electrónico disponible para el empleado.")
	case errors.As(err, &referenceErr):
		writeMessage(w, r, http.StatusBadRequest, fmt.Sprintf("El %s con ID %d no existe.", referenceName(referenceErr.Kind), referenceErr.ID))
	case errors.Is(err, employee.ErrReferenceNotFound):
		writeMessage(w, r, http.StatusBadRequest, "Uno de los datos de referencia no existe.")
	case errors.As(err, &unsupportedErr):
		writeMessage(w, r, http.StatusBadRequest, fmt.Sprintf("No hay un dominio de correo configurado para el país %s.", unsupportedErr.Country))
	case errors.Is(err, errInvalidHireDateFormat):
		writeMessage(w, r, http.StatusBadRequest, "El campo 'fechaIngreso' debe tener el formato yyyy-MM-dd.")
	case errors.Is(err, employee.ErrInvalidHireDate):
		writeMessage(w, r, http.StatusBadRequest, "La fecha de ingreso no puede ser superior a la fecha actual ni inferior a un mes atrás.")
	case errors.Is(err, employee.ErrMalformedImage):
		writeMessage(w, r, http.StatusBadRequest, "La foto enviada no es un contenido base64 válido.")
	case errors.Is(err, employee.ErrInvalidPage):
		writeMessage(w, r, http.StatusBadRequest, "El número de página no puede ser negativo.")
	case errors.Is(err, employee.ErrInvalidPageSize):
		writeMessage(w, r, http.StatusBadRequest, "El tamaño de página no es válido.")
	case errors.Is(err, employee.ErrInvalidStatus):
		writeMessage(w, r, http.StatusBadRequest, "El estado debe ser ACTIVE o INACTIVE.")
	case errors.Is(err, employee.ErrInvalidID):
		writeMessage(w, r, http.StatusBadRequest, "El ID del empleado no es válido.")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		writeMessage(w, r, http.StatusNotFound, "Empleado no encontrado.")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
		writeMessage(w, r, http.StatusInternalServerError, "Error interno del servidor.")
	}
}

// writeEmployeeError は ID が分かっている場合に 404 のメッセージへ ID を含めます。
func writeEmployeeError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		writeMessage(w, r, http.StatusNotFound, notFoundMessage(id))
		return
	}
	writeError(w, r, err)
}

func notFoundMessage(id int64) string {
	return fmt.Sprintf("Empleado con ID %d no encontrado.", id)
}

func conflictMessage(field employee.Field) string {
	switch field {
	case employee.FieldIdentificationNumber:
		return "El número de identificación ya existe. Por favor, ingrese uno diferente."
	case employee.FieldEmail:
		return "El correo electrónico ya está registrado. Por favor, ingrese uno diferente."
	default:
		return "Error de integridad de datos. Verifique la información ingresada."
	}
}

func wireFieldName(field employee.Field) string {
	if name, ok := wireFieldNames[field]; ok {
		return name
	}
	return string(field)
}

func referenceName(kind catalog.Kind) string {
	if name, ok := referenceNames[kind]; ok {
		return name
	}
	return string(kind)
}
