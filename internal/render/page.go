// Package render builds the HTML documents returned by the ingress hook.
package render

import "fmt"

// AdBlock is the advertisement markup injected when ads are enabled.
const AdBlock = `<div style="background: #fffacd; padding: 10px; margin: 10px 0; border: 1px dashed #ddd;">📢 Advertisement: Special Offer Available!</div>`

// ErrorPage is returned with a 500 whenever the page cannot be produced.
// It does not depend on any flag value.
const ErrorPage = `
      <!DOCTYPE html>
      <html>
      <body>
        <h1>Service Unavailable</h1>
        <p>Please try again later.</p>
      </body>
      </html>
    `

const pageTemplate = `
    <!DOCTYPE html>
    <html>
    <head>
      <title>EdgeWorker Demo</title>
      <style>
        body { font-family: Arial, sans-serif; margin: 40px; background: #f5f5f5; }
        .container { max-width: 600px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; }
        h1 { color: #333; }
      </style>
    </head>
    <body>
      <div class="container">
        <h1>Hello from EdgeWorker!</h1>
        <p>This content is dynamically generated at the edge using LaunchDarkly feature flags.</p>
        %s
        <p><small>Powered by Akamai EdgeWorkers + LaunchDarkly</small></p>
      </div>
    </body>
    </html>
  `

// Page renders the demo page, including AdBlock only when showAds is true.
func Page(showAds bool) string {
	adContent := ""
	if showAds {
		adContent = AdBlock
	}
	return fmt.Sprintf(pageTemplate, adContent)
}
