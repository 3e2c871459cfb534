package report

import (
	"github.com/fieldservice/reportgen/pkg/refdata"
	"github.com/fieldservice/reportgen/pkg/schema"
	"github.com/fieldservice/reportgen/pkg/validation"
)

// FormName is the descriptor name for the add-report form.
const FormName = "service-report"

// Descriptor builds the service-report form descriptor, populating selection
// choices from the fetched reference catalogs.
func Descriptor(refs refdata.Set) *schema.FormDescriptor {
	return schema.NewFormDescriptor(FormName).
		MustAdd("client", schema.FieldDescriptor{
			Kind:        schema.KindCombobox,
			Label:       "Client",
			Placeholder: "Selectati clientul",
			Choices:     refs.Clients.Options(),
		}).
		MustAdd("representative", schema.FieldDescriptor{
			Kind:        schema.KindText,
			Label:       "Reprezentant",
			Placeholder: "Introduceti numele reprezentantului",
		}).
		MustAdd("equipment", schema.FieldDescriptor{
			Kind:        schema.KindCombobox,
			Label:       "Aparat",
			Placeholder: "Selectati aparatul",
			Choices:     refs.Equipment.Options(),
		}).
		MustAdd("problemDescription", schema.FieldDescriptor{
			Kind:        schema.KindTextArea,
			Label:       "Descriere problema",
			Placeholder: "Descrieti problema in detaliu",
		}).
		MustAdd("beforePhotos", schema.FieldDescriptor{
			Kind:     schema.KindImage,
			Label:    "Poze inainte de interventie",
			MaxFiles: 5,
		}).
		MustAdd("standardProcedures", schema.FieldDescriptor{
			Kind:         schema.KindCombobox,
			Label:        "Proceduri standard",
			Placeholder:  "Selectati procedura",
			Repeatable:   true,
			MaxInstances: 5,
			AddLabel:     "Adauga procedura standard",
			Choices:      refs.Procedures.Options(),
		}).
		MustAdd("additionalProcedures", schema.FieldDescriptor{
			Kind:         schema.KindText,
			Label:        "Proceduri suplimentare",
			Placeholder:  "Introduceti procedura",
			Repeatable:   true,
			MaxInstances: 5,
			AddLabel:     "Adauga procedura suplimentara",
		}).
		MustAdd("replacedParts", schema.FieldDescriptor{
			Kind:         schema.KindQuantityCombobox,
			Label:        "Piese inlocuite",
			Placeholder:  "Selectati piesa",
			Repeatable:   true,
			MaxInstances: 10,
			AddLabel:     "Adauga piesa inlocuita",
			Choices:      refs.Parts.Options(),
		}).
		MustAdd("workHours", schema.FieldDescriptor{
			Kind:        schema.KindText,
			Label:       "Timp de lucru (ore)",
			Placeholder: "Ex: 2.5",
		}).
		MustAdd("travelDistance", schema.FieldDescriptor{
			Kind:        schema.KindText,
			Label:       "Km deplasare",
			Placeholder: "Introduceti numarul de kilometri",
		}).
		MustAdd("conclusions", schema.FieldDescriptor{
			Kind:        schema.KindTextArea,
			Label:       "Concluzii",
			Placeholder: "Introduceti concluziile interventiei",
		}).
		MustAdd("afterPhotos", schema.FieldDescriptor{
			Kind:     schema.KindImage,
			Label:    "Poze dupa interventie",
			MaxFiles: 5,
		}).
		MustAdd("clientSignature", schema.FieldDescriptor{
			Kind:  schema.KindSignature,
			Label: "Semnatura client",
		}).
		MustAdd("engineerSignature", schema.FieldDescriptor{
			Kind:  schema.KindSignature,
			Label: "Semnatura inginer",
		})
}

// Schema builds the validation rules for the add-report form, keyed by the
// same field names as Descriptor.
func Schema() *validation.Schema {
	return validation.NewSchema().
		Field("client", validation.Required("Selectati clientul")).
		Field("representative", validation.MinRunes(2, "Numele reprezentantului trebuie sa aiba cel putin 2 caractere")).
		Field("equipment", validation.Required("Selectati aparatul")).
		Field("problemDescription", validation.MinRunes(10, "Descrierea trebuie sa aiba cel putin 10 caractere")).
		Field("standardProcedures", validation.Required("Selectati cel putin o procedura standard")).
		Field("workHours", validation.Decimal("Introduceti un numar valid (ex: 2.5)")).
		Field("travelDistance", validation.Integer("Introduceti un numar valid de kilometri")).
		Field("conclusions", validation.MinRunes(10, "Concluziile trebuie sa aiba cel putin 10 caractere")).
		Field("clientSignature", validation.Required("Semnatura clientului este necesara")).
		Field("engineerSignature", validation.Required("Semnatura inginerului este necesara"))
}
