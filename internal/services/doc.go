// Package services implements the remote catalog the player draws tracks from.
//
// # Catalog
//
// [Catalog] is the single surface the rest of the application sees: keyword search, the regional
// trending chart and AI-assisted playlist generation. [Gateway] implements it by composing a
// [Searcher] and a [Generator].
//
// # YouTube
//
// [YouTubeService] wraps the YouTube Data API v3 client authenticated with a static API key.
// Search and trending results are restricted to the Music category and mapped field by field to
// [models.Track]. Items without a video id are skipped.
//
// # Gemini
//
// [GeminiService] calls generateContent with a fixed JSON response schema and decodes the
// suggested playlist name and songs. The gateway then resolves every suggestion to a track by
// searching "title artist" concurrently, bounded by an errgroup limit and a shared rate limiter.
//
// # Error Handling
//
// Every failure is reported as a [*CatalogError] whose Kind is one of:
//   - [ErrQuotaExceeded] : the provider rejected the call for quota or rate reasons
//   - [ErrBadRequest] : other 4xx responses, empty prompts, missing API keys
//   - [ErrUnreachable] : 5xx responses, transport failures, deadlines
//   - [ErrMalformed] : bodies that cannot be decoded into the expected shape
//
// Nothing is retried.
package services
