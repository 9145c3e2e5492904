package browser

// Scripts evaluated in the page. Functions run with `this` bound to the
// element they are called on.
const (
	// labelScript returns the text of the post that contains the control
	labelScript = `function(articleSel, textSel) {
		const article = this.closest(articleSel);
		if (!article) return "";
		const text = article.querySelector(textSel);
		return text ? text.textContent : "";
	}`

	// articleHTMLScript returns the surrounding post markup
	articleHTMLScript = `function(articleSel) {
		const article = this.closest(articleSel);
		return article ? article.outerHTML : "";
	}`

	scrollScript = `() => window.scrollTo(0, document.body.scrollHeight)`

	getItemScript = `(key) => {
		const v = window.localStorage.getItem(key);
		return { present: v !== null, value: v === null ? "" : v };
	}`

	setItemScript    = `(key, value) => window.localStorage.setItem(key, value)`
	removeItemScript = `(key) => window.localStorage.removeItem(key)`

	// overlayScript draws a fixed panel in the top-right corner with the
	// progress and error lines
	overlayScript = `(progress, lastError) => {
		let panel = document.getElementById("unliker-status");
		if (!panel) {
			panel = document.createElement("div");
			panel.id = "unliker-status";
			Object.assign(panel.style, {
				position: "fixed", top: "10px", right: "10px", zIndex: "9999",
				background: "#333", color: "#fff", padding: "10px",
				font: "13px monospace", pointerEvents: "none",
			});
			panel.innerHTML = "<div data-line='progress'></div><div data-line='error'></div>";
			document.body.appendChild(panel);
		}
		panel.querySelector("[data-line='progress']").textContent = progress;
		panel.querySelector("[data-line='error']").textContent = lastError;
	}`
)

// storageItem is the shape getItemScript returns
type storageItem struct {
	Present bool   `json:"present"`
	Value   string `json:"value"`
}
