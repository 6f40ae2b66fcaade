// Package pkgarchive implements export/import/validate/list of
// ".dockertree-package" archives — self-contained bundles of a branch
// environment's env files, transformed compose document, volume data, and
// (optionally) its committed code, used to hand a complete environment to a
// teammate or a remote host without either side needing direct Docker
// access to the other's volumes.
//
// A package is a directory (optionally rolled into a single .tar.gz) laid
// out as:
//
//	{branch}_{timestamp}.dockertree-package/
//	  environment/        .env, .dockertree/, transformed compose file
//	  volumes/             backup_{branch}.tar (gzip'd, per C4)
//	  code/                {branch}.tar.gz (only when include_code)
//	  metadata.json        package_version, project/branch, checksums
//
// Integrity rests entirely on metadata.json's checksums map (SHA-256,
// streamed in 4096-byte blocks) — there is no signing, matching the source
// system this was ported from.
package pkgarchive
