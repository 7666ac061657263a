package web

// Single page table of the latest scan, refreshed from the SSE stream.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>arbscan</title>
  <link href="https://fonts.googleapis.com/css2?family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root { --bg:#ffffff; --ink:#111111; --ink-mid:#4d4d4d; --panel:#f6f6f6; --gain:#1b9a4a; --loss:#d7263d; }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      width:min(1100px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
    }
    header { display:flex; justify-content:space-between; align-items:center; gap:1rem; margin-bottom:1.5rem; }
    h1 { font-size:1rem; letter-spacing:.2em; text-transform:uppercase; margin:0; }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#fff;
    }
    button {
      font-family:inherit;
      font-size:.7rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      background:#fff;
      padding:.4rem .9rem;
      cursor:pointer;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    button:disabled { color:var(--ink-mid); cursor:wait; }
    table { width:100%; border-collapse:collapse; background:#fff; border:2px solid var(--ink); }
    th, td { padding:.6rem .8rem; text-align:right; font-size:.8rem; border-bottom:1px dashed rgba(0,0,0,.15); }
    th:first-child, td:first-child { text-align:left; }
    th { font-size:.65rem; text-transform:uppercase; letter-spacing:.12em; }
    .positive { color:var(--gain); font-weight:700; }
    .negative { color:var(--loss); font-weight:700; }
    .message { margin-top:1rem; font-size:.75rem; color:var(--ink-mid); }
    .message.failure { color:var(--loss); }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <h1>CEX / DEX spread</h1>
      <div>
        <span id="status" class="status">Connecting…</span>
        <button id="refresh">Refresh</button>
      </div>
    </header>
    <table>
      <thead>
        <tr><th>Symbol</th><th>Price A</th><th>Price B</th><th>Diff</th><th>Diff %</th><th>Est. profit</th></tr>
      </thead>
      <tbody id="rows"></tbody>
    </table>
    <div id="message" class="message">Waiting for the first scan…</div>
  </div>
<script>
const rowsEl = document.getElementById('rows');
const messageEl = document.getElementById('message');
const statusEl = document.getElementById('status');
const refreshBtn = document.getElementById('refresh');

function render(view){
  rowsEl.innerHTML = '';
  (view.rows || []).forEach((row) => {
    const tr = document.createElement('tr');
    const pctClass = row.positive ? 'positive' : (row.negative ? 'negative' : '');
    [row.symbol, row.price_a, row.price_b, row.difference, row.percentage, row.estimated_profit].forEach((value, i) => {
      const td = document.createElement('td');
      td.textContent = value;
      if(i === 4 && pctClass){ td.className = pctClass; }
      tr.appendChild(td);
    });
    rowsEl.appendChild(tr);
  });
  messageEl.textContent = view.message || '';
  messageEl.className = 'message' + (view.result && view.result.status === 'failure' ? ' failure' : '');
}

async function loadLatest(){
  try{
    const resp = await fetch('/scan/latest');
    const view = await resp.json();
    render(view);
    refreshBtn.disabled = view.busy;
  }catch(err){
    console.error('latest scan', err);
  }
}

refreshBtn.addEventListener('click', async () => {
  refreshBtn.disabled = true;
  try{
    await fetch('/scan/refresh', { method:'POST' });
  }finally{
    setTimeout(loadLatest, 500);
  }
});

function connectSSE(){
  const source = new EventSource('/scan/stream');
  statusEl.textContent = 'Live';
  source.addEventListener('scan', (event) => {
    try{
      render(JSON.parse(event.data));
      refreshBtn.disabled = false;
    }catch(err){
      console.error('payload parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

loadLatest();
connectSSE();
</script>
</body>
</html>`
