package v1

import "html/template"

// CheckoutPage renders the hosted widget and reports its outcome back to the
// client. Dismissing the widget counts as a failure.
var CheckoutPage = template.Must(template.New(CheckoutTemplate).Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }} checkout</title>
  <style>
    body { font-family: system-ui, sans-serif; display: grid; place-items: center; min-height: 100vh; margin: 0; background: #f0fdf4; color: #064e3b; }
    main { text-align: center; }
    #status { margin-top: 1rem; font-weight: 600; }
  </style>
</head>
<body>
<main>
  <h1>{{ .Title }}</h1>
  <p>Amount due: {{ .Amount }}</p>
  <p id="status">Opening payment window...</p>
</main>
<script src="{{ .SDKPath }}"></script>
<script>
(function () {
  var done = false;
  var status = document.getElementById("status");

  function report(path, body, message) {
    if (done) { return; }
    done = true;
    fetch(path, {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify(body)
    }).finally(function () {
      status.textContent = message + " You can close this tab.";
    });
  }

  function fail(reason, extra) {
    var body = Object.assign({ reason: reason }, extra || {});
    report("{{ .FailurePath }}", body, "Payment not completed.");
  }

  try {
    var options = {{ .Options }};
    options.handler = function (resp) {
      report("{{ .SuccessPath }}", {
        razorpay_payment_id: resp.razorpay_payment_id,
        razorpay_order_id: resp.razorpay_order_id,
        razorpay_signature: resp.razorpay_signature
      }, "Payment received.");
    };
    options.modal = { ondismiss: function () { fail("payment cancelled", { dismissed: true }); } };

    var rzp = new Razorpay(options);
    rzp.on("payment.failed", function (resp) {
      var err = (resp && resp.error) || {};
      fail(err.description || "Payment failed", { code: err.code || "" });
    });
    rzp.open();
  } catch (e) {
    fail((e && e.message) || "Payment failed");
  }
})();
</script>
</body>
</html>
`))
