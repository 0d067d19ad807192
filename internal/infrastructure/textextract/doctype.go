package textextract

import (
	"path/filepath"
	"strings"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

// Filename keyword lists, checked against the whole filename before the
// extension rules get a say. A certificate scanned to PDF must not land in
// the invoice bucket just because it is a PDF.
var (
	certificateKeywords = []string{"certificado", "certificate", "certificacao"}
	trainingKeywords    = []string{"treinamento", "training", "apresentacao", "presentation", "slides"}
	invoiceKeywords     = []string{"nota_fiscal", "notafiscal", "nfse", "nfs-e", "fatura", "invoice", "boleto"}
)

type TypeInferrer struct{}

func NewTypeInferrer() *TypeInferrer {
	return &TypeInferrer{}
}

func (TypeInferrer) Infer(filename string) domain.DocumentType {
	name := strings.ToLower(filename)

	for _, kw := range certificateKeywords {
		if strings.Contains(name, kw) {
			return domain.TypeTrainingCertificate
		}
	}
	for _, kw := range trainingKeywords {
		if strings.Contains(name, kw) {
			return domain.TypeTrainingPresentation
		}
	}
	for _, kw := range invoiceKeywords {
		if strings.Contains(name, kw) {
			return domain.TypeInvoice
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return domain.TypeInvoice
	case ".xml":
		return domain.TypeFiscalXML
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".webp":
		return domain.TypeScannedDocument
	case ".csv", ".xlsx":
		return domain.TypeSpreadsheet
	default:
		return domain.TypeGenericDocument
	}
}
