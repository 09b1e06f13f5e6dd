package inbox

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// minExtractedTextLength guards against extractions that technically
	// succeed but return nothing useful.
	minExtractedTextLength = 50
	// binarySampleSize is the number of bytes sampled for binary detection.
	binarySampleSize = 1000
	// binaryThreshold is the proportion of non-printable characters that
	// indicates binary data.
	binaryThreshold = 0.3
)

// ExtractResumeText extracts text from a saved resume file. PDF extraction
// shells out to pdftotext and .doc to antiword, mirroring what is available
// on the deployment image.
func ExtractResumeText(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt":
		return extractPlainText(path)
	case ".pdf":
		return extractPDF(path)
	case ".doc":
		return extractDoc(path)
	case ".docx":
		return "", fmt.Errorf("docx extraction not supported, convert %s to pdf or txt", path)
	default:
		return "", fmt.Errorf("unsupported resume file type %q", ext)
	}
}

func extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	text := string(data)
	if IsBinaryData(text) {
		return "", fmt.Errorf("resume %s looks binary despite .txt extension", path)
	}
	return text, nil
}

func extractPDF(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("pdftotext (install poppler-utils): %w", err)
	}

	text := string(output)
	if len(text) < minExtractedTextLength {
		return "", fmt.Errorf("extracted text too short, %s may be image-based", path)
	}
	return text, nil
}

func extractDoc(path string) (string, error) {
	cmd := exec.Command("antiword", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("antiword: %w", err)
	}
	return string(output), nil
}

// IsBinaryData checks whether content looks like a binary blob (PDF/ZIP
// markers or a high share of non-printable bytes).
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}

	if strings.HasPrefix(content, "%PDF-") {
		return true
	}
	// DOCX and other zip containers.
	if len(content) >= 2 && content[:2] == "PK" {
		return true
	}

	sampleSize := min(binarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(sampleSize) > binaryThreshold
}
