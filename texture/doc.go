// Package texture holds rendered results in stable, caller-visible slots.
//
// A slot is allocated before its content exists and starts out holding a
// small fallback texture. Each completed job overwrites the slot in place:
// the *Slot stays the same, its pixels, size and version change. When a
// host GPU texture is bound to a slot (Store.Bind) or the store can create
// one (WithTextureCreator), every write is forwarded to it, following the
// same create-then-update pattern a gg canvas uses with gpucontext.
package texture
