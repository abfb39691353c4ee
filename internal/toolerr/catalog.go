package toolerr

import "fmt"

// InvalidPayload reports a malformed or incomplete request.
func InvalidPayload(message string) *Error {
	return New(CodeInvalidPayload, ReasonInvalidPayload, message,
		"Correct the request arguments and call again.")
}

// InvalidOp reports a rejected paint op. No op of the list has been applied.
func InvalidOp(index int, op, message string) *Error {
	return New(CodeInvalidPayload, ReasonInvalidOp,
		fmt.Sprintf("op[%d] (%s): %s", index, op, message),
		fmt.Sprintf("Fix op[%d] and resend the whole op list; nothing was painted.", index)).
		With("opIndex", index).
		With("op", op)
}

// OutsideTarget reports texture-space ops that miss every target rectangle.
func OutsideTarget(targets int) *Error {
	return New(CodeInvalidPayload, ReasonOutsideTarget,
		"texture-space ops do not intersect any target face rectangle",
		"Call texture_preflight with includeUsage to read the face rectangles, then move the ops inside one of them.").
		With("targetRects", targets)
}

// TextureNotFound reports an unknown texture id or name.
func TextureNotFound(ref string) *Error {
	return New(CodeInvalidPayload, ReasonTextureNotFound,
		fmt.Sprintf("texture %q not found", ref),
		"Call project_state to list textures and pass an existing textureId or textureName.").
		With("texture", ref)
}

// NoProject reports that no project is loaded.
func NoProject() *Error {
	return New(CodeInvalidState, ReasonNoProject, "no active project",
		"Load a project with project_load before editing textures.")
}

// RevisionMissing reports a mutating call without ifRevision.
func RevisionMissing(current string) *Error {
	return New(CodeRevisionMissing, ReasonRevisionMissing,
		"ifRevision is required for mutating calls",
		"Read the current revision from project_state and pass it as ifRevision.").
		With("currentRevision", current)
}

// RevisionMismatch reports a stale ifRevision.
func RevisionMismatch(expected, current string) *Error {
	return New(CodeRevisionMismatch, ReasonRevisionMismatch,
		"project changed since the given revision",
		"Re-read the project with project_state and retry with the current revision.").
		With("expectedRevision", expected).
		With("currentRevision", current)
}

// UsageMismatch reports a stale uvUsageId.
func UsageMismatch(expected, current string) *Error {
	return New(CodeUsageMismatch, ReasonUsageMismatch,
		"uv usage id does not match the current layout",
		"Call texture_preflight and retry with the refreshed uvUsageId.").
		With("expected", expected).
		With("current", current)
}

// UvOverlap reports two faces sharing texture pixels.
func UvOverlap(texture, a, b string) *Error {
	return New(CodeUvOverlap, ReasonUvOverlap,
		fmt.Sprintf("faces %s and %s overlap on texture %s", a, b, texture),
		"Run texture_auto_uv_atlas with apply=true to give every face its own rectangle.").
		With("texture", texture).
		With("faces", []string{a, b})
}

// UvScaleMismatch reports a face whose rectangle does not match the texel density.
func UvScaleMismatch(texture, face string, expected, actual float64) *Error {
	return New(CodeUvScaleMismatch, ReasonUvScaleMismatch,
		fmt.Sprintf("face %s on texture %s has density %.2f, expected %.2f", face, texture, actual, expected),
		"Run texture_auto_uv_atlas with apply=true to rescale face rectangles.").
		With("texture", texture).
		With("face", face).
		With("expectedDensity", expected).
		With("actualDensity", actual)
}

// UnresolvedReferences reports faces whose texture or UV cannot be resolved.
func UnresolvedReferences(n int) *Error {
	return New(CodeUnresolvedReferences, ReasonUnresolvedRefs,
		fmt.Sprintf("%d face reference(s) cannot be resolved", n),
		"Call texture_preflight with includeUsage, then reassign or clear the listed faces.").
		With("count", n)
}

// NoRects reports that none of the requested faces has a rectangle on the texture.
func NoRects(texture string) *Error {
	return New(CodeInvalidState, ReasonNoRects,
		fmt.Sprintf("no target face has a uv rectangle on texture %s", texture),
		"Assign the faces to the texture or run texture_auto_uv_atlas with apply=true.").
		With("texture", texture)
}

// NoBounds reports target rectangles that fall entirely outside the texture.
func NoBounds(texture string) *Error {
	return New(CodeInvalidState, ReasonNoBounds,
		fmt.Sprintf("target rectangles have no area inside texture %s", texture),
		"Run texture_auto_uv_atlas with apply=true to repack rectangles inside the texture.").
		With("texture", texture)
}

// NoTextures reports an empty usage set.
func NoTextures() *Error {
	return New(CodeInvalidState, ReasonNoTextures,
		"no face references a texture",
		"Assign a texture to at least one cube face before planning an atlas.")
}

// ResolutionMissing reports that the host exposes no project texture resolution.
func ResolutionMissing() *Error {
	return New(CodeInvalidState, ReasonResolutionMiss,
		"project texture resolution is not set",
		"Set the project texture resolution, then retry.")
}

// AtlasOverflow reports that faces cannot be packed even at the ceiling.
func AtlasOverflow(width, height int, density float64) *Error {
	return New(CodeAtlasOverflow, ReasonAtlasOverflow,
		fmt.Sprintf("faces do not fit in %dx%d at density %.2f", width, height, density),
		"Raise atlas.max_texture_size, lower the padding, or split faces across textures.").
		With("width", width).
		With("height", height).
		With("density", density)
}

// NotImplemented reports a host capability that is absent.
func NotImplemented(capability string) *Error {
	return New(CodeNotImplemented, ReasonNotImplemented,
		fmt.Sprintf("host does not support %s", capability),
		"Use a host that provides pixel rendering, or skip pixel operations.").
		With("capability", capability)
}

// RecoveryGuardTriggered reports a rolled-back catastrophic write.
func RecoveryGuardTriggered(texture string, before, after int) *Error {
	return New(CodeRecoveryGuardTriggered, ReasonRecoveryGuard,
		fmt.Sprintf("write to texture %s dropped opaque pixels from %d to %d; the texture was restored", texture, before, after),
		"Check the ops and target faces, call texture_preflight, then retry with a smaller edit.").
		With("texture", texture).
		With("opaqueBefore", before).
		With("opaqueAfter", after)
}
