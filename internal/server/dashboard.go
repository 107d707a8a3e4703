package server

import "net/http"

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>CKPool Widget</title>
<style>
  *, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; }
  :root {
    --bg: #0c0a09; --surface: #1c1917; --border: rgba(255,255,255,0.08);
    --text: #fafaf9; --text-dim: #a8a29e; --text-muted: #57534e;
    --rate: #00FF00; --shares: #00BFFF; --best: #FFD700;
  }
  body {
    font-family: -apple-system, 'SF Pro Display', 'Segoe UI', system-ui, sans-serif;
    background: var(--bg); color: var(--text);
    min-height: 100vh; padding: 40px 24px;
  }
  .container { max-width: 420px; margin: 0 auto; }
  .tile {
    background: var(--surface); border: 1px solid var(--border);
    border-radius: 18px; padding: 20px 22px; cursor: pointer;
  }
  .row { display: flex; justify-content: space-between; align-items: baseline; padding: 6px 0; }
  .label { font-size: 12px; color: var(--text-dim); text-transform: uppercase; letter-spacing: 0.6px; }
  .value { font-size: 24px; font-weight: 700; font-family: 'SF Mono', 'Menlo', monospace; }
  .value.stale { opacity: 0.55; }
  #hashrate { color: var(--rate); }
  #shares { color: var(--shares); }
  #best { color: var(--best); }
  .date { font-size: 11px; color: var(--text-muted); margin-left: 6px; }
  .footer {
    display: flex; justify-content: space-between; margin-top: 12px; padding-top: 12px;
    border-top: 1px solid var(--border); font-size: 13px; color: var(--text-dim);
    font-family: 'SF Mono', 'Menlo', monospace;
  }
  .setup { text-align: center; color: var(--text-dim); padding: 10px 0; font-size: 13px; }
  form { margin-top: 28px; display: grid; gap: 12px; }
  form label { font-size: 12px; color: var(--text-dim); display: grid; gap: 4px; }
  input[type=text] {
    background: var(--surface); color: var(--text); border: 1px solid var(--border);
    border-radius: 8px; padding: 8px 10px; font-family: 'SF Mono', 'Menlo', monospace;
  }
  .colors { display: grid; grid-template-columns: repeat(3, 1fr); gap: 8px; }
  .swatch { border-radius: 8px; padding: 6px; text-align: center; font-size: 11px; font-weight: 600; }
  button {
    background: #f97316; color: #0c0a09; border: 0; border-radius: 8px;
    padding: 10px; font-weight: 700; cursor: pointer;
  }
  #msg { font-size: 12px; min-height: 16px; }
</style>
</head>
<body>
<div class="container">
  <div class="tile" id="tile" title="Tap to refresh">
    <div class="row"><span class="label">Hashrate</span><span class="value" id="hashrate">--</span></div>
    <div class="row"><span class="label">Shares</span><span class="value" id="shares">--</span></div>
    <div class="row"><span class="label">Best</span><span><span class="value" id="best">--</span><span class="date" id="bestDate"></span></span></div>
    <div class="setup" id="setup" hidden>Set a mining address below</div>
    <div class="footer"><span id="price">?</span><span id="lastBlock">N/A</span><span id="updated">--:--</span></div>
  </div>

  <form id="settings">
    <label>Bitcoin address <input type="text" name="address" id="address" autocomplete="off"></label>
    <div class="colors">
      <label>Rate <input type="text" name="rate_color" id="rate_color" maxlength="7"><span class="swatch" id="rate_swatch">Aa</span></label>
      <label>Shares <input type="text" name="shares_color" id="shares_color" maxlength="7"><span class="swatch" id="shares_swatch">Aa</span></label>
      <label>Best <input type="text" name="best_color" id="best_color" maxlength="7"><span class="swatch" id="best_swatch">Aa</span></label>
    </div>
    <button type="submit">Save</button>
    <div id="msg"></div>
  </form>
</div>

<script>
const $ = id => document.getElementById(id);

async function fetchJSON(url, opts) {
  try {
    const res = await fetch(url, opts);
    const body = await res.json();
    if (!res.ok) throw new Error(body.error || res.status);
    return body;
  } catch (e) { return { error: e.message }; }
}

function hexToRGB(hex) {
  let h = (hex || '').replace('#', '');
  if (h.length === 3) h = h.split('').map(c => c + c).join('');
  if (!/^[0-9a-fA-F]{6}$/.test(h)) return null;
  const v = parseInt(h, 16);
  return [v >> 16 & 255, v >> 8 & 255, v & 255];
}

function paintSwatch(name) {
  const val = $(name + '_color').value;
  const rgb = hexToRGB(val);
  const sw = $(name + '_swatch');
  if (!rgb) { sw.style.background = 'transparent'; return; }
  const brightness = (rgb[0] * 299 + rgb[1] * 587 + rgb[2] * 114) / 1000;
  sw.style.background = val;
  sw.style.color = brightness > 128 ? '#000' : '#fff';
}

function render(tile) {
  const stale = new Set(tile.stale || []);
  for (const f of ['hashrate', 'shares']) {
    $(f).textContent = tile[f];
    $(f).classList.toggle('stale', stale.has(f));
  }
  $('best').textContent = tile.best;
  $('bestDate').textContent = tile.best_date || '';
  $('price').textContent = tile.price;
  $('lastBlock').textContent = tile.last_block;
  $('updated').textContent = tile.updated_at;
  $('setup').hidden = !tile.setup;
  const root = document.documentElement.style;
  root.setProperty('--rate', tile.colors.rate);
  root.setProperty('--shares', tile.colors.shares);
  root.setProperty('--best', tile.colors.best);
}

async function poll() {
  const st = await fetchJSON('/status');
  if (st.tile) render(st.tile);
}

async function loadSettings() {
  const s = await fetchJSON('/api/settings');
  if (s.error) return;
  $('address').value = s.address;
  $('rate_color').value = s.rate_color;
  $('shares_color').value = s.shares_color;
  $('best_color').value = s.best_color;
  ['rate', 'shares', 'best'].forEach(paintSwatch);
}

$('tile').addEventListener('click', async () => {
  const tile = await fetchJSON('/api/refresh', { method: 'POST' });
  if (!tile.error) render(tile);
});

['rate', 'shares', 'best'].forEach(n => $(n + '_color').addEventListener('input', () => paintSwatch(n)));

$('settings').addEventListener('submit', async e => {
  e.preventDefault();
  const body = {
    address: $('address').value,
    rate_color: $('rate_color').value,
    shares_color: $('shares_color').value,
    best_color: $('best_color').value,
  };
  const res = await fetchJSON('/api/settings', {
    method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body),
  });
  $('msg').textContent = res.error ? res.error : 'Saved';
  $('msg').style.color = res.error ? '#ef4444' : '#22c55e';
  if (!res.error) setTimeout(poll, 1500);
});

loadSettings();
poll();
setInterval(poll, 30000);
</script>
</body>
</html>`

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dashboardHTML))
}
