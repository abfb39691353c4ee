// Package project holds the in-memory mirror of a block model project: bones,
// cubes with per-face UV rectangles, and textures with their pixel buffers.
//
// # Data Model
//
//   - Bone: named, optionally parented, with a pivot point.
//   - Cube: owned by exactly one bone, spanning From..To in world units. Each of
//     its six faces may reference a texture and a UV rectangle.
//   - Texture: id, name, size, and an exclusively owned RGBA PixelBuffer.
//
// UV rectangles are expressed in texture pixels. (X1, Y1) is inclusive and
// (X2, Y2) is exclusive, following the image package convention.
//
// # Ownership
//
// A PixelBuffer belongs to exactly one texture. Writers never mutate a stored
// buffer in place: they clone it, edit the clone, and hand the clone to
// Store.ReplacePixels, which swaps it in atomically.
//
// # Invariants
//
// The Store enforces on every write that each cube's bone exists and that each
// populated face rectangle lies within the bounds of the texture it references.
// Faces may still dangle after RemoveTexture; those are reported by the usage
// index rather than silently dropped.
package project
