package bot

// Fixed replies.
const (
	ReplyUnexpected        = "⚠️ Terjadi kesalahan tak terduga."
	ReplyRejectMedia       = "⚠️ Kirim gambar ya, bukan file lain."
	ReplyDownloadFailed    = "❌ Gagal mengunduh gambar. Coba lagi ya."
	ReplyNoImage           = "⚠️ Tidak ada gambar yang bisa diproses."
	ReplyClassifyFailed    = "⚠️ Gagal memproses gambar. Pastikan server AI aktif."
	ReplyNoAdvisorAdvice   = "Aktifkan GEMINI_API_KEY untuk rekomendasi."
	ReplyAdvisorBusy       = "⚠️ AI sedang sibuk, coba lagi nanti."
	ReplyNoAdvisorQuestion = "Aktifkan *GEMINI_API_KEY* agar saya bisa menjawab pertanyaan seputar sampah."
	ReplyInvalidKey        = "⚠️ GEMINI_API_KEY tidak valid. Periksa konfigurasi bot."
	ReplyAnswerFailed      = "⚠️ Gagal menjawab saat ini. Coba lagi ya."
)

// Reactions.
const (
	ReactImage    = "🖼️"
	ReactQuestion = "💬"
)
