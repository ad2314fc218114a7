package service

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a business rule failure.  Handlers map kinds to HTTP
// status codes; anything that is not an *Error is an internal failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindNotConfirmed
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindPreconditionFailed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindNotConfirmed:
		return "not_confirmed"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPreconditionFailed:
		return "precondition_failed"
	}
	return "internal"
}

// Error is a business rule failure carrying the message shown to the
// client.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// KindOf returns the kind of err, or KindInternal when err is not a
// business rule failure.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// User-facing messages.
const (
	MsgIncomplete          = "Lengkapi data!"
	MsgLoginRequired       = "Email dan Password harus diisi!"
	MsgWrongLogin          = "Email atau Password salah!"
	MsgWrongPassword       = "Password salah!"
	MsgEmailNotFound       = "Email tidak ditemukan!"
	MsgNotConfirmed        = "Akun anda belum dikonfirmasi!"
	MsgEmailTaken          = "Email sudah terdaftar"
	MsgNotFound            = "Tidak ada data ditemukan"
	MsgPasswordMismatch    = "Konfirmasi password tidak sama!"
	MsgWrongOldPassword    = "Password lama salah!"
	MsgNumeric             = "Harga dan Kapasitas harus berupa angka!"
	MsgPictureRequired     = "Unggah gambar terlebih dahulu!"
	MsgPanoramaRequired    = "Unggah gambar panorama terlebih dahulu!"
	MsgAlreadyBooked       = "Anda sudah memesan!"
	MsgRoomFull            = "Kamar sudah penuh!"
	MsgAlreadyReviewed     = "Anda sudah memberi review!"
	MsgRatingRange         = "Rating harus antara 1 sampai 5!"
	MsgForbidden           = "Akses ditolak!"
	MsgInternal            = "Terjadi kesalahan!"
	MsgUnauthenticated     = "Token tidak valid!"
	MsgConfirmationBoolean = "Status harus berupa boolean!"
)

var (
	errIncomplete = newError(KindValidation, MsgIncomplete)
	errNotFound   = newError(KindNotFound, MsgNotFound)
	errEmailTaken = newError(KindConflict, MsgEmailTaken)
	errForbidden  = newError(KindForbidden, MsgForbidden)
)
