package api

// dashboardPage is the single-page UI: two dropdowns, a collapsible stats
// panel, a save button and the rendered raster.
const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Raster Index Dashboard</title>
<style>
  body { font-family: sans-serif; margin: 2rem auto; max-width: 860px; }
  select { margin: 0 1rem 1rem 0; padding: 0.3rem; }
  details { margin: 1rem 0; }
  .metrics { display: grid; grid-template-columns: 1fr 1fr; gap: 0.5rem; max-width: 420px; }
  .metric b { display: block; font-size: 1.2rem; }
  #message { margin-left: 1rem; }
  #message.error { color: #b00; }
  #message.ok { color: #080; }
  img { max-width: 100%; margin-top: 1rem; }
</style>
</head>
<body>
<h1>Raster Index Dashboard</h1>

<label>Index
  <select id="index"></select>
</label>
<label>Colormap
  <select id="cmap"></select>
</label>

<details open>
  <summary>Index statistics</summary>
  <div class="metrics">
    <div class="metric">Min<b id="stat-min">–</b></div>
    <div class="metric">Max<b id="stat-max">–</b></div>
    <div class="metric">Mean<b id="stat-mean">–</b></div>
    <div class="metric">Std dev<b id="stat-std">–</b></div>
  </div>
</details>

<button id="save">Save stats to database</button>
<span id="message"></span>

<div><img id="raster" alt="rendered raster"></div>

<script>
const fmt = v => Number.isFinite(v) ? v.toFixed(4) : "NaN";

async function fillSelect(id, url, key) {
  const res = await fetch(url);
  const data = await res.json();
  const sel = document.getElementById(id);
  for (const v of data[key]) {
    const opt = document.createElement("option");
    opt.value = opt.textContent = v;
    sel.appendChild(opt);
  }
}

async function refresh() {
  const index = document.getElementById("index").value;
  const cmap = document.getElementById("cmap").value;
  document.getElementById("raster").src =
    "/api/v1/raster?index=" + index + "&cmap=" + cmap + "&t=" + Date.now();

  const res = await fetch("/api/v1/stats?index=" + index);
  if (!res.ok) { return; }
  const data = await res.json();
  document.getElementById("stat-min").textContent = fmt(data.stats.min);
  document.getElementById("stat-max").textContent = fmt(data.stats.max);
  document.getElementById("stat-mean").textContent = fmt(data.stats.mean);
  document.getElementById("stat-std").textContent = fmt(data.stats.std_dev);
}

document.getElementById("save").addEventListener("click", async () => {
  const index = document.getElementById("index").value;
  const msg = document.getElementById("message");
  const res = await fetch("/api/v1/stats/save?index=" + index, { method: "POST" });
  if (res.ok) {
    msg.textContent = "Stats saved to database.";
    msg.className = "ok";
  } else {
    msg.textContent = await res.text();
    msg.className = "error";
  }
});

(async () => {
  await fillSelect("index", "/api/v1/indexes", "indexes");
  await fillSelect("cmap", "/api/v1/colormaps", "colormaps");
  document.getElementById("index").addEventListener("change", refresh);
  document.getElementById("cmap").addEventListener("change", refresh);
  await refresh();
})();
</script>
</body>
</html>
`
