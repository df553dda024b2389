package emails

import "fmt"

// Layout wraps email content in the shared HTML frame.
func Layout(recipientName, inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: -apple-system, Helvetica, Arial, sans-serif; background: #f4f5f7; margin: 0; padding: 24px; }
  .card { max-width: 520px; margin: 0 auto; background: #ffffff; border-radius: 12px; padding: 32px; }
  .brand { font-size: 20px; font-weight: 700; color: #16a34a; margin-bottom: 16px; }
  .btn { display: inline-block; background: #16a34a; color: #ffffff; padding: 12px 24px; border-radius: 8px; text-decoration: none; }
  .footer { color: #9ca3af; font-size: 12px; margin-top: 24px; text-align: center; }
</style>
</head>
<body>
  <div class="card">
    <div class="brand">need1</div>
    <p>Hi %s,</p>
    %s
  </div>
  <div class="footer">need1 &middot; your campus marketplace</div>
</body>
</html>`, recipientName, inner)
}
