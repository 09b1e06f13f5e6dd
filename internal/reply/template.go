package reply

const interviewHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Interview Invitation – {{.Position}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #1d4ed8 0%, #1e40af 100%);
      color: #ffffff;
    }

    .header .position {
      font-size: 22px;
      font-weight: 700;
      margin-bottom: 4px;
    }

    .header .company {
      font-size: 14px;
      opacity: 0.9;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
      font-size: 14px;
    }

    .keywords-list {
      display: flex;
      flex-wrap: wrap;
      gap: 6px;
      margin: 8px 0 0;
      padding: 0;
      list-style: none;
    }

    .keyword-tag {
      display: inline-block;
      padding: 3px 10px;
      font-size: 12px;
      font-weight: 500;
      background: #e0f2fe;
      color: #0369a1;
      border-radius: 4px;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="position">{{.Position}}</div>
      <div class="company">{{.Company}}</div>
    </div>

    <div class="section">
      <p>Dear {{.Candidate.Name}},</p>
      <p>Thank you for applying for the {{.Position}} position. We reviewed
      your application and were glad to see your background covers the areas
      we are hiring for:</p>
      <ul class="keywords-list">
        {{range .Matched}}<li class="keyword-tag">{{.}}</li>{{end}}
      </ul>
    </div>

    <div class="section">
      <p>We would like to invite you to an interview. A member of our team
      will follow up shortly to arrange a time that works for you.</p>
      <p>Kind regards,<br />{{.Company}}</p>
    </div>

    <div class="footer">
      This is an automated acknowledgement of your application.
    </div>
  </div>
</body>
</html>`

const rejectionHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Your application – {{.Position}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #374151 0%, #1f2937 100%);
      color: #ffffff;
    }

    .header .position {
      font-size: 22px;
      font-weight: 700;
      margin-bottom: 4px;
    }

    .header .company {
      font-size: 14px;
      opacity: 0.9;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
      font-size: 14px;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="position">{{.Position}}</div>
      <div class="company">{{.Company}}</div>
    </div>

    <div class="section">
      <p>Dear {{.Candidate.Name}},</p>
      <p>Thank you for your interest in the {{.Position}} position and for
      taking the time to apply.</p>
      <p>After reviewing your application, we have decided not to move forward
      at this time. We will keep your details on file and encourage you to
      apply for future openings that match your experience.</p>
      <p>We wish you the very best in your search.</p>
      <p>Kind regards,<br />{{.Company}}</p>
    </div>

    <div class="footer">
      This is an automated acknowledgement of your application.
    </div>
  </div>
</body>
</html>`
