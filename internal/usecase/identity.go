package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
)

const (
	MaxIdentityImageSize = 5 << 20
	// MinExtractionConfidence is the document confidence a complete read
	// needs to count as SUCCESS.
	MinExtractionConfidence = 70.0
)

type ExtractionStatus string

const (
	ExtractionSuccess ExtractionStatus = "SUCCESS"
	ExtractionPartial ExtractionStatus = "PARTIAL_SUCCESS"
	ExtractionFailed  ExtractionStatus = "FAILED"
)

const (
	DocPassport   = "PASSPORT"
	DocEmiratesID = "EMIRATES_ID"
)

type UploadedFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type IdentityExtractionInput struct {
	Passport   *UploadedFile
	EmiratesID *UploadedFile
}

type ExtractedField struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type DocumentExtraction struct {
	DocumentType string                    `json:"document_type"`
	Status       ExtractionStatus          `json:"status"`
	Confidence   float64                   `json:"confidence"`
	Fields       map[string]ExtractedField `json:"fields"`
	ErrorMessage string                    `json:"error_message,omitempty"`
}

type IdentityExtractionResult struct {
	Passport   *DocumentExtraction `json:"passport,omitempty"`
	EmiratesID *DocumentExtraction `json:"emirates_id,omitempty"`
}

var (
	passportFields   = []string{"passport_number", "full_name", "nationality", "date_of_birth", "expiry_date"}
	emiratesIDFields = []string{"id_number", "full_name", "nationality", "date_of_birth", "expiry_date"}
)

type IdentityService struct {
	OCR    TextDetector
	logger *zap.Logger
	now    func() time.Time
}

func NewIdentityService(ocr TextDetector, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{OCR: ocr, logger: logger, now: time.Now}
}

// ExtractIdentity reads the supplied identity images. Input problems fail the
// whole call before OCR runs; OCR problems only fail the affected document.
func (s *IdentityService) ExtractIdentity(ctx context.Context, input IdentityExtractionInput) (*IdentityExtractionResult, error) {
	if input.Passport == nil && input.EmiratesID == nil {
		return nil, Validation("at least one of passport or emirates_id must be provided")
	}
	var errs []ValidationError
	errs = checkIdentityImage(errs, "passport", input.Passport)
	errs = checkIdentityImage(errs, "emirates_id", input.EmiratesID)
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	out := &IdentityExtractionResult{}
	if input.Passport != nil {
		out.Passport = s.extract(ctx, DocPassport, input.Passport, s.parsePassport, passportFields)
	}
	if input.EmiratesID != nil {
		out.EmiratesID = s.extract(ctx, DocEmiratesID, input.EmiratesID, parseEmiratesID, emiratesIDFields)
	}
	return out, nil
}

func checkIdentityImage(errs []ValidationError, field string, f *UploadedFile) []ValidationError {
	if f == nil {
		return errs
	}
	if f.ContentType != "image/jpeg" && f.ContentType != "image/png" {
		errs = append(errs, ValidationError{field, "must be a JPEG or PNG image"})
	}
	if len(f.Data) == 0 {
		errs = append(errs, ValidationError{field, "is empty"})
	} else if len(f.Data) > MaxIdentityImageSize {
		errs = append(errs, ValidationError{field, "must not exceed 5MB"})
	}
	return errs
}

func (s *IdentityService) extract(
	ctx context.Context,
	docType string,
	f *UploadedFile,
	parse func([]TextLine) map[string]ExtractedField,
	expected []string,
) *DocumentExtraction {
	lines, err := s.OCR.DetectText(ctx, f.Data)
	if err != nil {
		s.logger.Warn("ocr failed", zap.String("document", docType), zap.Error(err))
		metrics.RecordIdentityExtraction(docType, string(ExtractionFailed))
		return &DocumentExtraction{
			DocumentType: docType,
			Status:       ExtractionFailed,
			Fields:       map[string]ExtractedField{},
			ErrorMessage: "text detection failed: " + err.Error(),
		}
	}

	res := scoreExtraction(docType, parse(lines), expected)
	metrics.RecordIdentityExtraction(docType, string(res.Status))
	return res
}

// scoreExtraction grades a document: confidence is the recovered share of
// expected fields times their average confidence.
func scoreExtraction(docType string, fields map[string]ExtractedField, expected []string) *DocumentExtraction {
	res := &DocumentExtraction{DocumentType: docType, Fields: fields}
	if len(fields) == 0 {
		res.Status = ExtractionFailed
		res.ErrorMessage = "no identity fields recognised"
		return res
	}

	found := 0
	var sum float64
	for _, key := range expected {
		if f, ok := fields[key]; ok {
			found++
			sum += f.Confidence
		}
	}
	if found > 0 {
		res.Confidence = round2(float64(found) / float64(len(expected)) * (sum / float64(found)))
	}

	if found == len(expected) && res.Confidence >= MinExtractionConfidence {
		res.Status = ExtractionSuccess
	} else {
		res.Status = ExtractionPartial
	}
	return res
}

var (
	mrzNameLine = regexp.MustCompile(`^P[A-Z<]([A-Z<]{3})([A-Z<]+)$`)
	mrzDataLine = regexp.MustCompile(`^([A-Z0-9<]{9})\d([A-Z<]{3})(\d{6})\d[MF<](\d{6})`)

	passportNoLabel   = regexp.MustCompile(`(?i)passport\s*(?:no|number|#)\.?\s*[:.]?`)
	passportNoValue   = regexp.MustCompile(`\b([A-Z]{1,2}[0-9]{6,8})\b`)
	nameLabel         = regexp.MustCompile(`(?i)\b(?:full\s+)?name\b\s*[:.]?`)
	nameValue         = regexp.MustCompile(`([A-Za-z][A-Za-z '\-]+[A-Za-z])`)
	nationalityLabel  = regexp.MustCompile(`(?i)\bnationality\b\s*[:.]?`)
	nationalityValue  = regexp.MustCompile(`([A-Za-z][A-Za-z ]+[A-Za-z])`)
	birthLabel        = regexp.MustCompile(`(?i)date\s+of\s+birth\s*[:.]?`)
	expiryLabel       = regexp.MustCompile(`(?i)(?:date\s+of\s+expiry|expiry\s+date|expiry)\s*[:.]?`)
	dateValue         = regexp.MustCompile(`(\d{2}[/.\-]\d{2}[/.\-]\d{4}|\d{2}\s+[A-Za-z]{3}\s+\d{4}|\d{4}-\d{2}-\d{2})`)
	emiratesIDPattern = regexp.MustCompile(`784[-\s]?(\d{4})[-\s]?(\d{7})[-\s]?(\d)`)
)

func (s *IdentityService) parsePassport(lines []TextLine) map[string]ExtractedField {
	fields := parseMRZ(lines, s.now())

	if _, ok := fields["passport_number"]; !ok {
		if f, ok := labelled(lines, passportNoLabel, passportNoValue); ok {
			fields["passport_number"] = f
		}
	}
	fillLabelled(fields, lines)
	return fields
}

func parseEmiratesID(lines []TextLine) map[string]ExtractedField {
	fields := map[string]ExtractedField{}
	for _, l := range lines {
		if m := emiratesIDPattern.FindStringSubmatch(l.Text); m != nil {
			fields["id_number"] = ExtractedField{
				Value:      "784-" + m[1] + "-" + m[2] + "-" + m[3],
				Confidence: l.Confidence,
			}
			break
		}
	}
	fillLabelled(fields, lines)
	return fields
}

// fillLabelled reads "Label: value" fields for whatever is still missing.
func fillLabelled(fields map[string]ExtractedField, lines []TextLine) {
	extractors := []struct {
		key   string
		label *regexp.Regexp
		value *regexp.Regexp
		norm  func(string) (string, bool)
	}{
		{"full_name", nameLabel, nameValue, normaliseName},
		{"nationality", nationalityLabel, nationalityValue, normaliseName},
		{"date_of_birth", birthLabel, dateValue, normaliseDate},
		{"expiry_date", expiryLabel, dateValue, normaliseDate},
	}
	for _, e := range extractors {
		if _, ok := fields[e.key]; ok {
			continue
		}
		f, ok := labelled(lines, e.label, e.value)
		if !ok {
			continue
		}
		v, ok := e.norm(f.Value)
		if !ok {
			continue
		}
		f.Value = v
		fields[e.key] = f
	}
}

// labelled finds label in a line and takes the value after it, or from the
// following line when the label stands alone.
func labelled(lines []TextLine, label, value *regexp.Regexp) (ExtractedField, bool) {
	for i, l := range lines {
		loc := label.FindStringIndex(l.Text)
		if loc == nil {
			continue
		}
		if m := value.FindStringSubmatch(l.Text[loc[1]:]); m != nil {
			return ExtractedField{Value: strings.TrimSpace(m[1]), Confidence: l.Confidence}, true
		}
		if i+1 < len(lines) {
			next := lines[i+1]
			if m := value.FindStringSubmatch(next.Text); m != nil {
				return ExtractedField{Value: strings.TrimSpace(m[1]), Confidence: min(l.Confidence, next.Confidence)}, true
			}
		}
	}
	return ExtractedField{}, false
}

func parseMRZ(lines []TextLine, now time.Time) map[string]ExtractedField {
	fields := map[string]ExtractedField{}
	for _, l := range lines {
		text := strings.ToUpper(strings.ReplaceAll(l.Text, " ", ""))
		if strings.Contains(text, "<<") {
			if m := mrzNameLine.FindStringSubmatch(text); m != nil {
				if name := mrzName(m[2]); name != "" {
					fields["full_name"] = ExtractedField{Value: name, Confidence: l.Confidence}
				}
				continue
			}
		}
		m := mrzDataLine.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		fields["passport_number"] = ExtractedField{Value: strings.Trim(m[1], "<"), Confidence: l.Confidence}
		if nat := strings.Trim(m[2], "<"); nat != "" {
			fields["nationality"] = ExtractedField{Value: nat, Confidence: l.Confidence}
		}
		if dob, ok := mrzDate(m[3], now, false); ok {
			fields["date_of_birth"] = ExtractedField{Value: dob, Confidence: l.Confidence}
		}
		if exp, ok := mrzDate(m[4], now, true); ok {
			fields["expiry_date"] = ExtractedField{Value: exp, Confidence: l.Confidence}
		}
	}
	return fields
}

// mrzName turns "SURNAME<<GIVEN<NAMES<<<" into "GIVEN NAMES SURNAME".
func mrzName(raw string) string {
	parts := strings.SplitN(strings.TrimRight(raw, "<"), "<<", 2)
	surname := strings.ReplaceAll(parts[0], "<", " ")
	if len(parts) == 1 {
		return strings.TrimSpace(surname)
	}
	given := strings.TrimSpace(strings.ReplaceAll(parts[1], "<", " "))
	return strings.TrimSpace(given + " " + surname)
}

// mrzDate expands YYMMDD. Expiry dates are always this century; birth dates
// later than today belong to the previous one.
func mrzDate(yymmdd string, now time.Time, expiry bool) (string, bool) {
	yy, err := strconv.Atoi(yymmdd[:2])
	if err != nil {
		return "", false
	}
	year := 2000 + yy
	if !expiry && year > now.Year() {
		year -= 100
	}
	t, err := time.Parse("20060102", strconv.Itoa(year)+yymmdd[2:])
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

var dateLayouts = []string{"02/01/2006", "02-01-2006", "02.01.2006", "02 Jan 2006", "2006-01-02"}

func normaliseDate(v string) (string, bool) {
	v = strings.Join(strings.Fields(v), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func normaliseName(v string) (string, bool) {
	v = strings.Join(strings.Fields(v), " ")
	return strings.ToUpper(v), len(v) >= 2
}
