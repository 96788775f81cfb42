package mailer

import (
	"fmt"
	"html"
)

const (
	otpSubject           = "Kode Verifikasi Pendaftaran Tryout PTN"
	passwordSubject      = "Password Akun Tryout PTN"
	passwordResetSubject = "Password Baru Akun Tryout PTN"
)

const baseStyle = `
    body { font-family: 'Inter', Arial, sans-serif; margin: 0; padding: 0; background-color: #f5f7fa; }
    .container { max-width: 500px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 20px rgba(0,0,0,0.1); overflow: hidden; }
    .header { background: linear-gradient(135deg, #1e3a8a 0%, #3b82f6 100%); padding: 30px; text-align: center; }
    .header h1 { color: white; margin: 0; font-size: 24px; }
    .content { padding: 30px; }
    .greeting { color: #374151; font-size: 16px; margin-bottom: 20px; }
    .code-box { background: #f0fdf4; border: 2px solid #10b981; border-radius: 8px; padding: 20px; text-align: center; margin: 20px 0; }
    .code { font-size: 36px; font-weight: bold; color: #059669; letter-spacing: 8px; margin: 0; font-family: monospace; }
    .warning { background: #fef3c7; border: 1px solid #f59e0b; border-radius: 8px; padding: 15px; margin: 20px 0; }
    .warning p { color: #92400e; margin: 0; font-size: 14px; }
    .info { color: #6b7280; font-size: 14px; margin-top: 20px; }
    .footer { background: #f9fafb; padding: 20px; text-align: center; color: #9ca3af; font-size: 12px; }`

func otpHTML(nama, code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>%s</style></head>
<body>
  <div class="container">
    <div class="header"><h1>🎓 Tryout PTN</h1></div>
    <div class="content">
      <p class="greeting">Halo <strong>%s</strong>,</p>
      <p class="greeting">Berikut adalah kode verifikasi untuk pendaftaran Tryout PTN:</p>
      <div class="code-box"><p class="code">%s</p></div>
      <p class="info">⏰ Kode ini berlaku selama 5 menit.</p>
      <p class="info">⚠️ Jangan bagikan kode ini kepada siapapun.</p>
    </div>
    <div class="footer"><p>© Tryout PTN. Semoga sukses!</p></div>
  </div>
</body>
</html>`, baseStyle, html.EscapeString(nama), html.EscapeString(code))
}

func passwordHTML(nama, email, password string, reset bool) string {
	intro := "Selamat! Email Anda telah berhasil diverifikasi. Berikut adalah password untuk login ke akun Tryout PTN Anda:"
	if reset {
		intro = "Password akun Tryout PTN Anda telah diatur ulang. Berikut password baru Anda:"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>%s</style></head>
<body>
  <div class="container">
    <div class="header"><h1>🎓 Tryout PTN</h1></div>
    <div class="content">
      <p class="greeting">Halo <strong>%s</strong>,</p>
      <p class="greeting">%s</p>
      <div class="code-box"><p class="code">%s</p></div>
      <div class="warning">
        <p>⚠️ <strong>PENTING:</strong> Simpan password ini dengan baik dan jangan bagikan kepada siapapun.</p>
      </div>
      <p class="info">📧 Gunakan email <strong>%s</strong> dan password di atas untuk masuk ke akun Anda.</p>
    </div>
    <div class="footer"><p>Platform Tryout Ujian Masuk Perguruan Tinggi</p></div>
  </div>
</body>
</html>`, baseStyle, html.EscapeString(nama), intro, html.EscapeString(password), html.EscapeString(email))
}
