package usecase

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

// Deterministic local extractor, used when the external capability fails
// schema validation twice. The patterns are tuned for Brazilian NFS-e
// service invoices and training certificates. Every match is best-effort:
// a field that does not match is omitted, never an error. Required-field
// gaps are the schema validator's job.

var (
	reNFSeNumber    = regexp.MustCompile(`(?i)n[úu]mero\s+da\s+NFS-?e\s*[:#-]?\s*(\d+)`)
	reGenericNumber = regexp.MustCompile(`(?i)(?:nota\s+fiscal|n[úu]mero|documento)\s*(?:n[º°o]?\.?\s*)?[:#-]?\s*(\d{1,20})`)

	// Slash-formatted CNPJ only, so the 44-60 digit access key never
	// shadows it.
	reCNPJ         = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`)
	reTakerSection = regexp.MustCompile(`(?i)tomador\s+do\s+servi[çc]o`)

	reAccessKeyLabeled = regexp.MustCompile(`(?i)chave\s+de\s+acesso\s+da\s+NFS-?e\s*[:#-]?\s*(\d{44,60})`)
	reAccessKeyBare    = regexp.MustCompile(`\b(\d{44,60})\b`)

	reTotalAmount    = regexp.MustCompile(`(?i)valor\s+total(?:\s+da\s+nota)?\s*(?:\(R\$\))?\s*[:=]?\s*(?:R\$)?\s*([\d.]+,\d{2}|[\d.]+)`)
	reServicesAmount = regexp.MustCompile(`(?i)valor\s+(?:dos?\s+)?servi[çc]os?\s*(?:\(R\$\))?\s*[:=]?\s*(?:R\$)?\s*([\d.]+,\d{2}|[\d.]+)`)
	reISSAmount      = regexp.MustCompile(`(?i)(?:valor\s+do\s+)?ISS(?:QN)?\s*(?:\(R\$\))?\s*[:=]?\s*(?:R\$)?\s*([\d.]+,\d{2}|[\d.]+)`)

	reIssueDateLabeled = regexp.MustCompile(`(?i)data\s+e\s+hora\s+d[ae]\s+emiss[ãa]o\s*[:#-]?\s*(\d{2}/\d{2}/\d{4})`)
	reBareDate         = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)

	reTraineeName  = regexp.MustCompile(`(?i)certificamos\s+que\s+(.+?)\s+participou`)
	reFilenameName = regexp.MustCompile(`(?i)certificado[ _-]+(?:de[ _-]+)?(\p{L}+(?:[ _]\p{L}+)*)`)
	reCPF          = regexp.MustCompile(`\b\d{3}[.\s]?\d{3}[.\s]?\d{3}[\s.-]?\d{2}\b`)
	reCourseName   = regexp.MustCompile(`(?i)participou\s+do\s+treinamento\s+(.+?)\s+em\s+conformidade`)
	reWorkload     = regexp.MustCompile(`(?i)carga\s+hor[áa]ria\s+de\s+(\d+(?:[.,]\d+)?)\s+horas`)

	reNonDigits = regexp.MustCompile(`\D`)
)

// invoiceOnlyFields are meaningless on a training certificate and are
// removed from its result even when a pattern happened to match.
var invoiceOnlyFields = []string{
	"document_number", "cnpj", "taker_cnpj", "access_key_nfse",
	"iss_amount", "services_amount", "total_amount",
}

const takerSectionWindow = 400

func fallbackExtract(docType domain.DocumentType, filename, content string) domain.FieldMap {
	fields := domain.FieldMap{}

	if number := extractDocumentNumber(content); number != "" {
		fields["document_number"] = number
	}
	if cnpj := firstCNPJ(content); cnpj != "" {
		fields["cnpj"] = cnpj
	}
	if taker := extractTakerCNPJ(content); taker != "" {
		fields["taker_cnpj"] = taker
	}
	if key := extractAccessKey(content); key != "" {
		fields["access_key_nfse"] = key
	}
	if v, ok := extractAmount(reTotalAmount, content); ok {
		fields["total_amount"] = v
	}
	if v, ok := extractAmount(reServicesAmount, content); ok {
		fields["services_amount"] = v
	}
	if v, ok := extractAmount(reISSAmount, content); ok {
		fields["iss_amount"] = v
	}
	if date := extractIssueDate(content); date != "" {
		fields["issue_date"] = date
	}

	if docType == domain.TypeTrainingCertificate {
		extractCertificateFields(fields, filename, content)
		for _, field := range invoiceOnlyFields {
			delete(fields, field)
		}
	}

	return fields
}

func extractDocumentNumber(content string) string {
	if m := reNFSeNumber.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	if m := reGenericNumber.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

func firstCNPJ(content string) string {
	if m := reCNPJ.FindString(content); m != "" {
		return reNonDigits.ReplaceAllString(m, "")
	}
	return ""
}

// extractTakerCNPJ only searches the window following the "tomador do
// serviço" section header; elsewhere a CNPJ belongs to the issuer.
func extractTakerCNPJ(content string) string {
	loc := reTakerSection.FindStringIndex(content)
	if loc == nil {
		return ""
	}
	end := loc[1] + takerSectionWindow
	if end > len(content) {
		end = len(content)
	}
	return firstCNPJ(content[loc[1]:end])
}

func extractAccessKey(content string) string {
	if m := reAccessKeyLabeled.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	if m := reAccessKeyBare.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

func extractAmount(re *regexp.Regexp, content string) (float64, bool) {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	return parseBrazilianAmount(m[1])
}

// parseBrazilianAmount normalizes "R$ 1.234,56" style values: currency
// symbol stripped, dot thousands separators dropped, decimal comma swapped
// for a dot. Unparseable input reports !ok instead of failing.
func parseBrazilianAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// extractIssueDate prefers the labeled emission timestamp, falls back to any
// bare dd/mm/yyyy token, and converts to ISO yyyy-mm-dd.
func extractIssueDate(content string) string {
	raw := ""
	if m := reIssueDateLabeled.FindStringSubmatch(content); m != nil {
		raw = m[1]
	} else if m := reBareDate.FindStringSubmatch(content); m != nil {
		raw = m[1]
	}
	if raw == "" {
		return ""
	}
	parsed, err := time.Parse("02/01/2006", raw)
	if err != nil {
		return ""
	}
	return parsed.Format("2006-01-02")
}

func extractCertificateFields(fields domain.FieldMap, filename, content string) {
	if name := extractTraineeName(filename, content); name != "" {
		fields["trainee_name"] = name
	}
	if m := reCPF.FindString(content); m != "" {
		fields["trainee_cpf"] = reNonDigits.ReplaceAllString(m, "")
	}
	if course := extractCourseName(content); course != "" {
		fields["course_name"] = course
	}
	if m := reWorkload.FindStringSubmatch(content); m != nil {
		if hours, ok := parseBrazilianAmount(m[1]); ok {
			fields["workload_hours"] = hours
		}
	}
	if company := extractCompanyName(content); company != "" {
		fields["company_name"] = company
	}
}

func extractTraineeName(filename, content string) string {
	if m := reTraineeName.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if m := reFilenameName.FindStringSubmatch(base); m != nil {
		return strings.TrimSpace(strings.ReplaceAll(m[1], "_", " "))
	}
	return ""
}

func extractCourseName(content string) string {
	if m := reCourseName.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.Contains(strings.ToLower(content), "nr-10") {
		return "NR-10 - Básico"
	}
	return ""
}

// extractCompanyName takes the non-empty line immediately preceding a
// CNPJ-formatted line, provided that line is not itself a CPF or another
// CNPJ.
func extractCompanyName(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !reCNPJ.MatchString(line) {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			candidate := strings.TrimSpace(lines[j])
			if candidate == "" {
				continue
			}
			if reCPF.MatchString(candidate) || reCNPJ.MatchString(candidate) {
				break
			}
			return candidate
		}
	}
	return ""
}
