// Package storage fans generated artifacts out to pluggable backends
// behind one contract: accept bytes plus a target filename, return where
// the bytes ended up.
//
// A backend is selected by a tagged Destination value; New dispatches on
// the destination kind with an exhaustive switch. Stores are constructed
// once (credentials resolved against the environment at construction
// time) and are stateless afterwards, except for lazily-initialized
// backend handles which each store exclusively owns. All stores are safe
// for concurrent use.
//
// Implementations:
//   - Filesystem: writes to a local directory
//   - S3: S3-compatible object storage (AWS or custom endpoint)
//   - Drive: Google Drive folder via a service-account identity
//   - Slack: channel file upload
//   - Notion: file upload attached to a page
//   - Telegram: bot sendDocument to a chat
//   - Webhook: Discord-style webhook file post
package storage
