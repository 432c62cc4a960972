package transfer

import (
	"fmt"
	"html"
)

const pageStyle = `
    <style>
        body {
            max-width: 500px;
            margin: 50px auto;
            padding: 0 15px;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Arial, sans-serif;
            line-height: 1.5;
            text-align: center;
        }
        .box {
            padding: 25px 15px;
            border: 2px dashed #ccc;
            border-radius: 8px;
        }
        .button, input[type="submit"] {
            display: inline-block;
            padding: 12px 30px;
            background-color: #4285f4;
            color: white;
            border: none;
            border-radius: 4px;
            cursor: pointer;
            font-size: 1rem;
            text-decoration: none;
        }
        input[type="file"] {
            margin: 20px 0;
            width: 100%;
        }
        .meta {
            color: #666;
            font-size: 0.9rem;
        }
    </style>`

func page(title, body string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>` + title + `</title>` + pageStyle + `
</head>
<body>
` + body + `
</body>
</html>
`
}

// landingPage is served on / in download mode. size < 0 means the file is
// currently missing.
func landingPage(name string, size int64) string {
	meta := "file not found"
	if size >= 0 {
		meta = formatFileSize(size)
	}
	return page("Download file", fmt.Sprintf(`    <div class="box">
        <h1>Download file</h1>
        <p><b>%s</b></p>
        <p class="meta">%s</p>
        <a class="button" href="/download">Download</a>
    </div>`, html.EscapeString(name), meta))
}

var uploadFormPage = page("Upload file", `    <div class="box">
        <h1>Upload file</h1>
        <form method="POST" enctype="multipart/form-data">
            <input type="file" name="file" required>
            <input type="submit" value="Upload">
        </form>
    </div>`)

func uploadedPage(name string, size int) string {
	return page("File uploaded", fmt.Sprintf(`    <h1>File uploaded</h1>
    <p>Name: <b>%s</b></p>
    <p class="meta">%s</p>
    <a class="button" href="/">Back</a>`, html.EscapeString(name), formatFileSize(int64(size))))
}

const (
	notFoundPage      = "<html><body><h1>404 Not Found</h1></body></html>"
	fileMissingPage   = "<html><body><h1>404 - File not found</h1></body></html>"
	invalidUploadPage = "<html><body><h1>Error: invalid or empty file</h1></body></html>"
)

// formatFileSize converts bytes to human-readable format (B, KB, MB, GB)
func formatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
