package sidecar

const deftem = `
import json
import math
import pickle

import pandas as pd

from http.server import BaseHTTPRequestHandler, HTTPServer

################################################################################

def load_model(p):
  try:
    import joblib
    return joblib.load(p)
  except ImportError:
    with open(p, "rb") as f:
      return pickle.load(f)

MODEL = load_model({{ .Pat }})

################################################################################

def build_frame(req):
  f = pd.DataFrame([req["values"]], columns=req["columns"])

  for c in req.get("categorical", []):
    f[c] = f[c].astype("category")

  return f

################################################################################

class S(BaseHTTPRequestHandler):
    def _set_response(self, code=200):
        self.send_response(code)
        self.send_header('Content-type', 'text/plain')
        self.end_headers()

    def do_GET(self):
        self._set_response()
        self.wfile.write("OK\n".encode("utf-8"))

    def do_POST(self):
        try:
            con_len = int(self.headers.get('Content-Length'))
            req_bod = json.loads(self.rfile.read(con_len).decode('utf-8'))
            pre = float(MODEL.predict(build_frame(req_bod))[0])
            if math.isnan(pre) or math.isinf(pre):
                raise ValueError("non-finite prediction")
        except Exception as e:
            self._set_response(500)
            self.wfile.write(str(e).encode("utf-8"))
            return

        self._set_response()
        self.wfile.write(repr(pre).encode())

    def log_message(self, format, *args):
        return

################################################################################

def run(server_class=HTTPServer, handler_class=S, addr={{ .Add }}, port={{ .Por }}):
    httpd = server_class((addr, port), handler_class)

    try:
        httpd.serve_forever()
    except KeyboardInterrupt:
        pass

    httpd.server_close()

################################################################################

run()
`
