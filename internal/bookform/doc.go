// Package bookform validates book create/edit input and encodes it as the
// multipart body the catalog service expects.
//
// File inputs are Payload values. Each one is checked against a Constraint
// (an accepted MIME pattern and a size cap) by sniffing its content with
// github.com/gabriel-vasile/mimetype, so a renamed file cannot slip past the
// check. Validation failures are catalog validation errors and never reach the
// network.
package bookform
