package extract

import (
	"fmt"
	"time"

	"github.com/naufalhakim/catatin/internal/model"
)

// FallbackItem is substituted when the model omits an item name.
const FallbackItem = "Unknown Item"

// FallbackCategory is substituted when the model omits a category.
const FallbackCategory = "Belanja"

// defaultConfidence is assumed when the model omits a confidence score,
// on the prompt's 0-100 scale.
const defaultConfidence = 50

const promptTemplate = `Kamu adalah asisten AI yang membantu parsing data pengeluaran dari teks natural language bahasa Indonesia.

TUGAS:
1. Parse teks input menjadi data pengeluaran terstruktur
2. Identifikasi: item, harga, kategori, dan tanggal
3. Dukung multiple transaksi dalam satu input, dipisahkan koma atau baris baru
4. Return JSON array dengan format yang konsisten

ATURAN UNTUK FIELD "item":
- Hanya tulis NAMA BARANG/JASA, bukan kalimat lengkap
- Hapus kata kerja seperti: "beli", "bayar", "makan", "buat", "isi"
- Hapus kata penghubung seperti: "untuk", "di", "ke", "dari"
- Gunakan Title Case

Contoh benar:
- "beli ayam 10rb" -> item: "Ayam"
- "bayar listrik 100rb" -> item: "Listrik"
- "beli dada ayam mentah 19rb" -> item: "Dada Ayam Mentah"
- "isi pulsa 20rb" -> item: "Pulsa"

KATEGORI YANG TERSEDIA:
- Makanan (makanan, minuman, makan siang, kopi, restaurant)
- Transportasi (transport, ojek, bensin, parkir)
- Belanja (belanja, pasar, supermarket, fashion, elektronik)
- Tagihan (listrik, air, internet, pulsa, cicilan)
- Hiburan (hiburan, bioskop, streaming, game)
- Kesehatan (obat, dokter, rumah sakit)
- Pendidikan (buku, kursus, sekolah)
- Lainnya (yang tidak cocok kategori lain)
Gunakan kategori di atas bila cocok; kategori baru boleh jika memang perlu.

TANGGAL:
- "kemarin" = 1 hari yang lalu
- "2 hari lalu" = 2 hari yang lalu
- "minggu lalu" = 7 hari yang lalu
- Tanggal spesifik: parse ke format ISO (%[2]s)
- Jika tidak disebutkan = tanggal referensi

HARGA (selalu angka Rupiah bulat):
- "19rb" = "19k" = "19.000" = "19000" = 19000
- "1,5jt" = "1.5jt" = 1500000

CONFIDENCE SCORE (0-100):
- 100: semua field jelas dan pasti
- 80-99: sebagian besar jelas, sedikit asumsi
- 60-79: beberapa field butuh asumsi
- <60: banyak field tidak jelas

CONTOH OUTPUT untuk input "makan siang 35rb, kopi 15k":
[{"item":"Makan Siang","amount":35000,"category":"Makanan","date":"%[1]s","confidence":90},
{"item":"Kopi","amount":15000,"category":"Makanan","date":"%[1]s","confidence":90}]

PENTING:
- Return HANYA valid JSON array, tanpa markdown atau teks tambahan
- Jika tidak bisa parse sama sekali: return array kosong []
- Tanggal referensi (hari ini): %[1]s

USER INPUT: %[3]q

OUTPUT (JSON array only):`

// buildPrompt renders the fixed extraction instruction for one input text,
// anchored to the supplied reference date.
func buildPrompt(text string, now time.Time) string {
	return fmt.Sprintf(promptTemplate, now.Format(model.DateLayout), model.DateLayout, text)
}
