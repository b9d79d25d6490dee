// Package modus describes what a Yamaha Clavinova / Modus F01 and F11
// digital piano accepts, as listed in the instrument's MIDI data list.
//
// A Profile is used in two places. As a transform.Filter it drops
// channel messages, meta events and system exclusive messages the
// instrument ignores or misinterprets. Prepare then rebuilds the head of
// a merged format 0 track so the instrument starts from a known state:
// tempo, time signature and names first, the instrument's own
// sequencer-specific metas, a GM system on, a reverb setup and a
// bank/program/mixer lead-in, followed by whatever setup events the
// original file carried before its first note.
package modus
