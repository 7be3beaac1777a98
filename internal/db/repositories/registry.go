package repositories

import (
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/audit"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// DescriptorFor builds the audit registry entry for T from its model methods.
func DescriptorFor[T any, P TrackedPtr[T]]() audit.Descriptor {
	var zero T
	p := P(&zero)
	return audit.Descriptor{
		Type:   p.AuditType(),
		Table:  p.TableName(),
		Label:  p.LabelExpr(),
		Plural: p.TableName(),
	}
}

// AuditDescriptors lists every tracked entity.
func AuditDescriptors() []audit.Descriptor {
	return []audit.Descriptor{
		DescriptorFor[models.Carrera](),
		DescriptorFor[models.Alumno](),
		DescriptorFor[models.Profesor](),
		DescriptorFor[models.Materia](),
		DescriptorFor[models.Periodo](),
		DescriptorFor[models.Grupo](),
		DescriptorFor[models.Inscripcion](),
		DescriptorFor[models.Calificacion](),
		DescriptorFor[models.Asistencia](),
		DescriptorFor[models.FactorRiesgo](),
		DescriptorFor[models.AlumnoFactorRiesgo](),
		DescriptorFor[models.Pago](),
		DescriptorFor[models.User](),
	}
}

// NewAuditRegistry returns a registry holding every tracked entity.
func NewAuditRegistry() (*audit.Registry, error) {
	return audit.NewRegistry(AuditDescriptors()...)
}
