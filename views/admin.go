package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// AdminDashboard renders the full admin surface: the post management
// table with search/filter/pagination, the category editor and the
// message inbox. flash carries the outcome of the last mutation.
func AdminDashboard(cfg SiteConfig, list PostList, categories []Category, messages []Message, flash, csrfToken string) templ.Component {
	return page(cfg, PageMeta{Title: "Admin Dashboard"}, func(b *strings.Builder) {
		b.WriteString(`<section class="admin">`)
		b.WriteString(`<div class="admin-header"><h1>Admin Dashboard</h1>`)
		b.WriteString(`<form method="post" action="/logout/" class="inline">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
		b.WriteString(`<button type="submit">Logout</button></form></div>`)
		if flash != "" {
			b.WriteString(`<p class="toast">` + esc(flash) + `</p>`)
		}

		// Post management
		b.WriteString(`<div class="panel"><div class="panel-header"><h2>Post Management</h2>`)
		b.WriteString(`<a class="button" href="/admin/posts/new/">Create New Post</a></div>`)
		b.WriteString(`<form class="list-controls" action="/admin/" method="get">`)
		b.WriteString(`<input type="search" name="q" placeholder="Search by title..." value="` + esc(list.Search) + `"` +
			` hx-get="/admin/" hx-trigger="input changed delay:500ms, search" hx-target="#admin-posts" hx-include="closest form">`)
		b.WriteString(`<select name="category" hx-get="/admin/" hx-trigger="change" hx-target="#admin-posts" hx-include="closest form">`)
		writeOption(b, "", "All Categories", list.CategoryID == 0)
		for _, cat := range categories {
			writeOption(b, strconv.FormatInt(cat.ID, 10), cat.Name, list.CategoryID == cat.ID)
		}
		b.WriteString(`</select></form>`)
		b.WriteString(`<div id="admin-posts">`)
		writeAdminPostsTable(b, list, csrfToken)
		b.WriteString(`</div></div>`)

		// Category management
		b.WriteString(`<div class="panel"><h2>Category Management</h2>`)
		b.WriteString(`<form method="post" action="/admin/categories/save/" class="inline">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
		b.WriteString(`<input type="text" name="name" placeholder="New category" required>`)
		b.WriteString(`<button type="submit">Add</button></form>`)
		b.WriteString(`<ul class="category-list">`)
		for _, cat := range categories {
			b.WriteString(`<li>`)
			b.WriteString(`<form method="post" action="/admin/categories/save/" class="inline">`)
			b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
			fmt.Fprintf(b, `<input type="hidden" name="id" value="%d">`, cat.ID)
			b.WriteString(`<input type="text" name="name" value="` + esc(cat.Name) + `" required>`)
			b.WriteString(`<button type="submit">Save</button></form>`)
			fmt.Fprintf(b, `<button class="danger" hx-delete="/admin/categories/%d/" hx-headers='{"X-CSRF-Token":"%s"}' hx-confirm="Delete this category? This action cannot be undone." hx-target="body">Delete</button>`, cat.ID, esc(csrfToken))
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul></div>`)

		// Message inbox
		b.WriteString(`<div class="panel"><h2>Messages</h2>`)
		if len(messages) == 0 {
			b.WriteString(`<p class="empty">No messages received.</p>`)
		}
		for _, m := range messages {
			class := "message read"
			if !m.IsRead {
				class = "message unread"
			}
			b.WriteString(`<div class="` + class + `">`)
			b.WriteString(`<p class="message-from">` + esc(m.Name) + ` &lt;` + esc(m.Email) + `&gt;</p>`)
			b.WriteString(`<p class="message-date">` + esc(FormatDateTime(m.CreatedAt)) + `</p>`)
			b.WriteString(`<p>` + esc(m.Body) + `</p>`)
			label := "Mark as Read"
			if m.IsRead {
				label = "Mark as Unread"
			}
			fmt.Fprintf(b, `<button hx-post="/admin/messages/%d/read/" hx-headers='{"X-CSRF-Token":"%s"}' hx-target="body">%s</button>`, m.ID, esc(csrfToken), label)
			fmt.Fprintf(b, `<button class="danger" hx-delete="/admin/messages/%d/" hx-headers='{"X-CSRF-Token":"%s"}' hx-confirm="Delete this message?" hx-target="body">Delete</button>`, m.ID, esc(csrfToken))
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div>`)
		b.WriteString(`</section>`)
	})
}

// AdminPostsSection is the partial swapped in by the dashboard's
// debounced search box and category filter.
func AdminPostsSection(list PostList, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeAdminPostsTable(&b, list, csrfToken)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeAdminPostsTable(b *strings.Builder, list PostList, csrfToken string) {
	if len(list.Posts) == 0 {
		b.WriteString(`<p class="empty">No posts found.</p>`)
		return
	}
	b.WriteString(`<table class="admin-table"><thead><tr>`)
	b.WriteString(`<th>Title</th><th>Category</th><th>Publication Date</th><th>Actions</th>`)
	b.WriteString(`</tr></thead><tbody>`)
	for _, p := range list.Posts {
		b.WriteString(`<tr>`)
		b.WriteString(`<td>` + esc(p.Title) + `</td>`)
		if p.CategoryName != "" {
			b.WriteString(`<td>` + esc(p.CategoryName) + `</td>`)
		} else {
			b.WriteString(`<td>-</td>`)
		}
		b.WriteString(`<td>` + esc(FormatDate(p.PublishedAt)) + `</td>`)
		b.WriteString(`<td>`)
		fmt.Fprintf(b, `<a href="/admin/posts/%d/">Edit</a> `, p.ID)
		fmt.Fprintf(b, `<button class="danger" hx-delete="/admin/posts/%d/" hx-headers='{"X-CSRF-Token":"%s"}' hx-confirm="Delete this post? This action cannot be undone." hx-target="body">Delete</button>`, p.ID, esc(csrfToken))
		b.WriteString(`</td></tr>`)
	}
	b.WriteString(`</tbody></table>`)
	if list.TotalPages > 1 {
		fmt.Fprintf(b, `<div class="table-footer"><span>Total %d posts</span>`, list.Total)
		b.WriteString(`<nav class="pagination">`)
		if list.Page > 1 {
			b.WriteString(`<a href="` + esc(listURL("/admin/", list, list.Page-1)) + `">&lsaquo;</a>`)
		}
		fmt.Fprintf(b, `<span>Page %d of %d</span>`, list.Page, list.TotalPages)
		if list.Page < list.TotalPages {
			b.WriteString(`<a href="` + esc(listURL("/admin/", list, list.Page+1)) + `">&rsaquo;</a>`)
		}
		b.WriteString(`</nav></div>`)
	}
}

// AdminPostForm renders the post editor, pre-filled when editing. errMsg
// carries a failed save or upload so the user can retry without losing
// the entered values.
func AdminPostForm(cfg SiteConfig, post Post, categories []Category, errMsg, csrfToken string) templ.Component {
	title := "Create New Post"
	if post.ID != 0 {
		title = "Edit Post"
	}
	return page(cfg, PageMeta{Title: title}, func(b *strings.Builder) {
		b.WriteString(`<section class="admin"><h1>` + title + `</h1>`)
		if errMsg != "" {
			b.WriteString(`<p class="status error">` + esc(errMsg) + `</p>`)
		}
		b.WriteString(`<form method="post" action="/admin/posts/save/" enctype="multipart/form-data">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
		if post.ID != 0 {
			fmt.Fprintf(b, `<input type="hidden" name="id" value="%d">`, post.ID)
		}
		b.WriteString(`<label for="title">Title</label>`)
		b.WriteString(`<input id="title" name="title" type="text" value="` + esc(post.Title) + `" required>`)
		b.WriteString(`<label for="category_id">Category</label>`)
		b.WriteString(`<select id="category_id" name="category_id" required>`)
		writeOption(b, "", "Choose Category", post.CategoryID == 0)
		for _, cat := range categories {
			writeOption(b, strconv.FormatInt(cat.ID, 10), cat.Name, post.CategoryID == cat.ID)
		}
		b.WriteString(`</select>`)
		b.WriteString(`<label for="published_at">Publish Date</label>`)
		b.WriteString(`<input id="published_at" name="published_at" type="date" value="` + DateInputValue(post.PublishedAt) + `">`)
		b.WriteString(`<label for="image">Cover Image</label>`)
		if post.ImageURL != "" {
			b.WriteString(`<img class="preview" src="` + esc(post.ImageURL) + `" alt="Current cover image">`)
		}
		b.WriteString(`<input id="image" name="image" type="file" accept="image/*">`)
		b.WriteString(`<label for="content">Content</label>`)
		b.WriteString(`<textarea id="content" name="content" rows="16">` + esc(post.Content) + `</textarea>`)
		b.WriteString(`<div class="form-actions"><a class="button secondary" href="/admin/">Cancel</a>`)
		b.WriteString(`<button type="submit">Save</button></div>`)
		b.WriteString(`</form></section>`)
	})
}
