package service

import "fmt"

// WhatsApp message templates sent to listing owners.

func registrationMessage(app, name string) string {
	return fmt.Sprintf("*%s*\n\nKos: %s berhasil melakukan registrasi di ApparteKost. \n\nTunggu konfirmasi dalam 3x24 jam!", app, name)
}

func credentialMessage(app, email, password string) string {
	return fmt.Sprintf("*%s*\n\nKos anda telah berhasil terdaftar dan diverifikasi di ApparteKost. \n\nInformasi akun:\nEmail: %s\nPassword: %s\n\nPastikan kamu mengunggah gambar panorama agar kos dapat tampil dalam aplikasi.", app, email, password)
}

func reactivationMessage(app, name string) string {
	return fmt.Sprintf("*%s*\n\nKos: %s berhasil di aktivasi kembali di ApparteKost. \n\nPastikan kamu mengunggah gambar panorama agar kos dapat tampil dalam aplikasi.", app, name)
}

func rejectionMessage(app, name string) string {
	return fmt.Sprintf("*%s*\n\n %s karena suatu hal tidak dapat tampil pada aplikasi.\n\nJika menurut anda ada kesalahan silahkan hubungi admin.", app, name)
}

func bookingHistoryMessage(listing string) string {
	return fmt.Sprintf("Anda melakukan booking untuk Kos di %s", listing)
}

func reviewHistoryMessage(rating int, listing string) string {
	return fmt.Sprintf("Anda melakukan review dengan rating %d⭐ untuk Kos di %s", rating, listing)
}
