// Package ui renders the server-side HTML pages of the logo manager.
package ui

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Logo represents a single stored logo for display.
type Logo struct {
	ID           int
	OriginalName string
	URL          string
}

func writeAll(w io.Writer, parts ...string) error {
	for _, part := range parts {
		if _, err := io.WriteString(w, part); err != nil {
			return err
		}
	}
	return nil
}

// Layout renders a full HTML page with a title and body component.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := writeAll(w,
			"<!DOCTYPE html><html lang=\"en\">",
			"<head><meta charset=\"utf-8\">",
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">",
			"<title>", html.EscapeString(title), "</title>",
			// Minimal modern CSS framework (Pico.css) via CDN.
			"<link rel=\"stylesheet\" href=\"https://unpkg.com/@picocss/pico@2/css/pico.min.css\">",
			"</head><body><main class=\"container\">",
		)
		if err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		return writeAll(w, "</main></body></html>")
	})
}

// IndexPage renders the gallery: upload form, header actions and one card
// per stored logo.
func IndexPage(version string, logos []Logo) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		err := writeAll(w,
			"<header><hgroup><h1>TV Logo Manager</h1>",
			"<p>Version: ", html.EscapeString(version), "</p></hgroup>",
			"<nav><ul>",
			"<li><a href=\"/backup\" role=\"button\">Download Backup</a></li>",
			"<li><a href=\"/clear-cache\" role=\"button\" class=\"secondary\">Clear Image Cache</a></li>",
			"</ul></nav></header>",
			"<section><h2>Upload New Logo(s)</h2>",
			"<form id=\"uploadForm\" enctype=\"multipart/form-data\">",
			"<input type=\"file\" name=\"file\" id=\"fileInput\" accept=\"image/*\" multiple required>",
			"<input type=\"submit\" value=\"Upload Logo(s)\">",
			"</form><p id=\"uploadMessage\"></p></section>",
			"<section><h2>Uploaded Logos</h2>",
		)
		if err != nil {
			return err
		}

		if len(logos) == 0 {
			if err := writeAll(w, "<p>No logos uploaded yet.</p>"); err != nil {
				return err
			}
		} else {
			if err := writeAll(w, "<div class=\"grid\" id=\"logoGallery\">"); err != nil {
				return err
			}
			for _, logo := range logos {
				err := writeAll(w,
					"<article>",
					fmt.Sprintf("<img src=\"/cached-image/%d\" alt=\"Logo ID: %d\" loading=\"lazy\">", logo.ID, logo.ID),
					fmt.Sprintf("<p><strong>ID:</strong> %d<br><strong>Original:</strong> %s</p>", logo.ID, html.EscapeString(logo.OriginalName)),
					fmt.Sprintf("<input type=\"text\" value=\"%s\" readonly>", html.EscapeString(logo.URL)),
					"<footer>",
					fmt.Sprintf("<a href=\"/download/%d/png\">PNG</a> <a href=\"/download/%d/webp\">WebP</a> ", logo.ID, logo.ID),
					fmt.Sprintf("<button class=\"secondary\" data-delete=\"%d\">Delete</button>", logo.ID),
					"</footer></article>",
				)
				if err != nil {
					return err
				}
			}
			if err := writeAll(w, "</div>"); err != nil {
				return err
			}
		}

		return writeAll(w, "</section>", indexScript)
	})

	return Layout("TV Logo Manager", body)
}

// SetupPage renders the provider credentials form.
func SetupPage() templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return writeAll(w,
			"<h1>Storage Provider Setup</h1>",
			"<p>Enter your media API credentials. Environment variables, if set, override this form.</p>",
			"<form method=\"post\" action=\"/setup\">",
			"<label for=\"cloud_name\">Cloud Name:</label>",
			"<input type=\"text\" id=\"cloud_name\" name=\"cloud_name\" required>",
			"<label for=\"api_key\">API Key:</label>",
			"<input type=\"text\" id=\"api_key\" name=\"api_key\" required>",
			"<label for=\"api_secret\">API Secret:</label>",
			"<input type=\"password\" id=\"api_secret\" name=\"api_secret\" required>",
			"<input type=\"submit\" value=\"Save Configuration\">",
			"</form>",
		)
	})

	return Layout("Setup TV Logo Manager", body)
}

const indexScript = `<script>
document.getElementById('uploadForm').addEventListener('submit', async (e) => {
    e.preventDefault();
    const files = document.getElementById('fileInput').files;
    const data = new FormData();
    for (const f of files) data.append('file', f);
    const msg = document.getElementById('uploadMessage');
    msg.textContent = 'Uploading...';
    try {
        const resp = await fetch('/upload', { method: 'POST', body: data });
        const body = await resp.json();
        const entries = Array.isArray(body) ? body : [body];
        const errors = entries.filter((r) => r.error);
        msg.textContent = errors.length === 0
            ? 'Upload complete.'
            : 'Upload finished with errors: ' + errors.map((r) => r.error).join('; ');
        if (entries.length > errors.length) window.location.reload();
    } catch (err) {
        msg.textContent = 'Upload failed: ' + err;
    }
});
document.querySelectorAll('[data-delete]').forEach((btn) => {
    btn.addEventListener('click', async () => {
        const id = btn.getAttribute('data-delete');
        const resp = await fetch('/api/logos/' + id, { method: 'DELETE' });
        if (resp.ok) window.location.reload();
    });
});
</script>`
